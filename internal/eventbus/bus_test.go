package eventbus

import (
	"testing"
	"time"

	"pkt.systems/chansync/schema"
)

func TestSubscribeAndPublish(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe("chat")
	defer cancel()

	event := schema.TabEvent{Window: "chat", Type: schema.TabEventUnread, Tab: schema.TabSnapshot{Name: "Thoughts"}}
	bus.OnTabEvent(event)

	select {
	case got := <-ch:
		if got.Type != EventTab {
			t.Fatalf("expected tab event, got %v", got.Type)
		}
		if got.Tab.Window != event.Window || got.Tab.Tab.Name != "Thoughts" {
			t.Fatalf("unexpected payload: %+v", got.Tab)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for event")
	}
}

func TestWindowSubscribersAreIsolated(t *testing.T) {
	bus := New(nil)
	chat, cancelChat := bus.Subscribe("chat")
	defer cancelChat()
	all, cancelAll := bus.Subscribe(AllWindows)
	defer cancelAll()

	bus.OnTabEvent(schema.TabEvent{Window: "other", Type: schema.TabEventCreated})
	bus.OnChannelEvent(schema.ChannelEvent{Type: schema.ChannelEventCleared, Channel: "main"})

	select {
	case got := <-chat:
		t.Fatalf("did not expect event for chat subscriber: %+v", got)
	default:
	}
	for _, want := range []EventType{EventTab, EventChannel} {
		select {
		case got := <-all:
			if got.Type != want {
				t.Fatalf("expected %v, got %v", want, got.Type)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("timed out waiting for %v", want)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe("chat")
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
}

func TestPublishDoesNotBlockWhenFull(t *testing.T) {
	bus := New(nil)
	bus.depth = 1
	_, cancel := bus.Subscribe("chat")
	defer cancel()

	var sendCh chan Event
	bus.mu.Lock()
	for ch := range bus.subs["chat"] {
		sendCh = ch
		break
	}
	bus.mu.Unlock()
	if sendCh == nil {
		t.Fatalf("expected subscriber channel")
	}
	sendCh <- Event{Type: EventTab}
	done := make(chan struct{})
	go func() {
		bus.OnTabEvent(schema.TabEvent{Window: "chat"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("publish blocked on full channel")
	}
}
