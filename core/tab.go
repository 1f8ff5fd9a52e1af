package core

import "pkt.systems/chansync/schema"

// tab is one view inside a tabbed window. It owns a channel log that merges
// every subscribed stream, plus unread state.
type tab struct {
	name           schema.TabName
	streams        []schema.ChannelID
	showTimestamps bool
	ignoreActivity bool
	log            *channelLog
	unread         bool
	unreadCount    uint64
	dest           Destination
	window         *window
}

func newTab(cfg schema.TabConfig, capacity int, win *window) *tab {
	return &tab{
		name:           cfg.Name,
		streams:        dedupeStreams(cfg.Streams),
		showTimestamps: cfg.ShowTimestamps,
		ignoreActivity: cfg.IgnoreActivity,
		log:            newChannelLog(schema.ChannelID("tab:"+string(cfg.Name)), capacity),
		window:         win,
	}
}

// markRead clears unread state. It reports whether anything changed.
func (t *tab) markRead() bool {
	changed := t.unread || t.unreadCount > 0
	t.unread = false
	t.unreadCount = 0
	return changed
}

// markUnread records one line of activity. It reports whether the tab just
// transitioned from read to unread.
func (t *tab) markUnread() bool {
	first := !t.unread
	t.unread = true
	if t.unreadCount < ^uint64(0) {
		t.unreadCount++
	}
	return first
}

// Snapshot returns a renderer-friendly view of the tab.
func (t *tab) Snapshot(active bool) schema.TabSnapshot {
	return schema.TabSnapshot{
		Name:           t.name,
		Streams:        append([]schema.ChannelID(nil), t.streams...),
		ShowTimestamps: t.showTimestamps,
		IgnoreActivity: t.ignoreActivity,
		Active:         active,
		Unread:         t.unread,
		UnreadCount:    t.unreadCount,
		Version:        t.log.Version(),
	}
}

func dedupeStreams(streams []schema.ChannelID) []schema.ChannelID {
	out := make([]schema.ChannelID, 0, len(streams))
	seen := make(map[schema.ChannelID]struct{}, len(streams))
	for _, stream := range streams {
		if _, ok := seen[stream]; ok {
			continue
		}
		seen[stream] = struct{}{}
		out = append(out, stream)
	}
	return out
}
