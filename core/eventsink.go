package core

import "pkt.systems/chansync/schema"

// EventSink observes tab and channel events. Calls arrive on the goroutine
// driving the core, so implementations must not block or call back into it.
type EventSink interface {
	OnTabEvent(event schema.TabEvent)
	OnChannelEvent(event schema.ChannelEvent)
}

// SinkFuncs adapts plain functions to EventSink. A nil field drops that kind
// of event.
type SinkFuncs struct {
	Tab     func(schema.TabEvent)
	Channel func(schema.ChannelEvent)
}

func (s SinkFuncs) OnTabEvent(event schema.TabEvent) {
	if s.Tab != nil {
		s.Tab(event)
	}
}

func (s SinkFuncs) OnChannelEvent(event schema.ChannelEvent) {
	if s.Channel != nil {
		s.Channel(event)
	}
}
