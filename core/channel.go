package core

import "pkt.systems/chansync/schema"

// channelLog is an append-only, capacity-bounded sequence of lines stamped
// with a monotonic version. Version advances by one per appended line and by
// one per clear, so version minus the version of the oldest retained line is
// always at least len(lines).
type channelLog struct {
	id       schema.ChannelID
	lines    []schema.Line
	capacity int
	version  uint64
}

func newChannelLog(id schema.ChannelID, capacity int) *channelLog {
	if capacity <= 0 {
		capacity = schema.DefaultChannelCapacity
	}
	return &channelLog{id: id, capacity: capacity}
}

// Append adds a line, evicting the oldest lines past capacity.
func (l *channelLog) Append(line schema.Line) {
	l.lines = append(l.lines, line)
	l.version++
	if len(l.lines) > l.capacity {
		trim := len(l.lines) - l.capacity
		for i := 0; i < trim; i++ {
			l.lines[i] = schema.Line{}
		}
		l.lines = l.lines[trim:]
	}
}

// Clear drops every retained line and advances the version so lagging
// consumers resync instead of replaying pre-clear content.
func (l *channelLog) Clear() {
	l.lines = nil
	l.version++
}

// Version returns the number of appends and clears applied so far.
func (l *channelLog) Version() uint64 {
	return l.version
}

// Len returns the number of retained lines.
func (l *channelLog) Len() int {
	return len(l.lines)
}

// Tail returns the newest n retained lines, oldest first. The slice aliases
// the log and must not be modified.
func (l *channelLog) Tail(n int) []schema.Line {
	if n <= 0 {
		return nil
	}
	if n > len(l.lines) {
		n = len(l.lines)
	}
	return l.lines[len(l.lines)-n:]
}

// Lines returns a copy of the retained lines.
func (l *channelLog) Lines() []schema.Line {
	return append([]schema.Line(nil), l.lines...)
}
