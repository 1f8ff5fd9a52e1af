package eventbus

import (
	"context"
	"sync"

	"pkt.systems/chansync/schema"
	"pkt.systems/pslog"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventTab carries tab lifecycle and activity updates.
	EventTab EventType = "tab"
	// EventChannel carries producer-side channel changes.
	EventChannel EventType = "channel"
)

// AllWindows subscribes to events from every window, including channel
// events that belong to no window.
const AllWindows schema.WindowName = ""

// Event represents a UI-facing event emitted by the core.
type Event struct {
	Type    EventType
	Tab     schema.TabEvent
	Channel schema.ChannelEvent
}

// Bus fans events out to per-window subscribers.
type Bus struct {
	mu    sync.Mutex
	subs  map[schema.WindowName]map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[schema.WindowName]map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber for window (AllWindows for everything)
// and returns a channel + cancel.
func (b *Bus) Subscribe(window schema.WindowName) (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	windowSubs := b.subs[window]
	if windowSubs == nil {
		windowSubs = make(map[chan Event]struct{})
		b.subs[window] = windowSubs
	}
	windowSubs[ch] = struct{}{}
	count := len(windowSubs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.With("window", window).Debug("eventbus subscribe", "subs", count)
	}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			if subs := b.subs[window]; subs != nil {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(b.subs, window)
				}
			}
			b.mu.Unlock()
			close(ch)
			if b.log != nil {
				b.log.With("window", window).Debug("eventbus unsubscribe")
			}
		})
	}
}

// OnTabEvent publishes a tab event to the window's subscribers and to
// AllWindows subscribers.
func (b *Bus) OnTabEvent(event schema.TabEvent) {
	b.publish(event.Window, Event{Type: EventTab, Tab: event})
}

// OnChannelEvent publishes a channel event to AllWindows subscribers.
func (b *Bus) OnChannelEvent(event schema.ChannelEvent) {
	b.publish(AllWindows, Event{Type: EventChannel, Channel: event})
}

func (b *Bus) publish(window schema.WindowName, event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := make([]chan Event, 0, len(b.subs[window])+len(b.subs[AllWindows]))
	for sub := range b.subs[window] {
		subs = append(subs, sub)
	}
	if window != AllWindows {
		for sub := range b.subs[AllWindows] {
			subs = append(subs, sub)
		}
	}
	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	b.mu.Unlock()
	if dropped > 0 && b.log != nil {
		b.log.With("window", window).Trace("eventbus dropped", "count", dropped, "type", event.Type)
	}
}
