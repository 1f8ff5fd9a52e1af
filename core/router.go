package core

import (
	"pkt.systems/chansync/schema"
)

// timestampLayout is prepended to lines routed into timestamped tabs.
const timestampLayout = "[15:04:05] "

// tabRouter indexes tab subscriptions by stream.
type tabRouter struct {
	subs map[schema.ChannelID][]*tab
}

// rebuild recomputes the subscription index from the current windows.
func (r *tabRouter) rebuild(windows []*window) {
	subs := make(map[schema.ChannelID][]*tab)
	for _, win := range windows {
		for _, t := range win.tabs {
			for _, stream := range t.streams {
				subs[stream] = append(subs[stream], t)
			}
		}
	}
	r.subs = subs
}

func (r *tabRouter) targets(channel schema.ChannelID) []*tab {
	return r.subs[channel]
}

// route copies line into every tab subscribed to channel and updates unread
// state for tabs that are not currently shown.
func (c *Core) route(channel schema.ChannelID, line schema.Line) {
	for _, t := range c.router.targets(channel) {
		entry := line
		if t.showTimestamps {
			entry = c.stamp(line)
		}
		t.log.Append(entry)
		if t.ignoreActivity || t.window.activeTab() == t {
			continue
		}
		if t.markUnread() {
			c.emitTabEvent(t.window, schema.TabEvent{
				Type: schema.TabEventUnread,
				Tab:  t.Snapshot(false),
			})
		}
	}
}

func (c *Core) stamp(line schema.Line) schema.Line {
	segs := make([]schema.Segment, 0, len(line.Segments)+1)
	segs = append(segs, schema.Segment{
		Text: c.now().Format(timestampLayout),
		Kind: schema.KindTimestamp,
	})
	segs = append(segs, line.Segments...)
	return schema.Line{Channel: line.Channel, Segments: segs}
}

// activate makes index the active tab of win and clears its unread state.
func (c *Core) activate(win *window, index int) {
	win.active = index
	t := win.tabs[index]
	t.markRead()
	c.logTab(win, t).Debug("tab activated", "index", index)
	c.emitTabEvent(win, schema.TabEvent{
		Type: schema.TabEventActivated,
		Tab:  t.Snapshot(true),
	})
}

// nextWithUnread scans forward from the tab after the active one, wrapping
// around, and returns the first unread tab index or -1.
func nextWithUnread(win *window) int {
	n := len(win.tabs)
	for step := 1; step < n; step++ {
		idx := (win.active + step) % n
		if win.tabs[idx].unread {
			return idx
		}
	}
	return -1
}
