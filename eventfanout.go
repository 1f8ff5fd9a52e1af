package chansync

import (
	"pkt.systems/chansync/core"
	"pkt.systems/chansync/schema"
)

// eventFanout hands every core event to each sink in order.
type eventFanout []core.EventSink

func newEventFanout(sinks ...core.EventSink) eventFanout {
	out := make(eventFanout, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return out
}

func (f eventFanout) OnTabEvent(event schema.TabEvent) {
	for _, sink := range f {
		sink.OnTabEvent(event)
	}
}

func (f eventFanout) OnChannelEvent(event schema.ChannelEvent) {
	for _, sink := range f {
		sink.OnChannelEvent(event)
	}
}
