package core

import "pkt.systems/chansync/schema"

// window is either a text window bound to one channel or a tabbed window
// holding an ordered list of tabs with exactly one active.
type window struct {
	name    schema.WindowName
	kind    schema.WindowKind
	channel schema.ChannelID
	width   int
	height  int
	dest    Destination
	tabs    []*tab
	active  int
}

func (w *window) activeTab() *tab {
	if w.kind != schema.WindowTabbed || len(w.tabs) == 0 {
		return nil
	}
	if w.active < 0 || w.active >= len(w.tabs) {
		w.active = 0
	}
	return w.tabs[w.active]
}

func (w *window) tabIndex(name schema.TabName) int {
	for i, t := range w.tabs {
		if t.name == name {
			return i
		}
	}
	return -1
}

// visibleDestination returns the destination currently shown by the window.
func (w *window) visibleDestination() Destination {
	if w.kind == schema.WindowText {
		return w.dest
	}
	if t := w.activeTab(); t != nil {
		return t.dest
	}
	return 0
}

func (w *window) tabSnapshots() []schema.TabSnapshot {
	out := make([]schema.TabSnapshot, 0, len(w.tabs))
	for i, t := range w.tabs {
		out = append(out, t.Snapshot(i == w.active))
	}
	return out
}

// Snapshot returns a renderer-friendly view of the window.
func (w *window) Snapshot() schema.WindowSnapshot {
	snap := schema.WindowSnapshot{
		Name:      w.name,
		Kind:      w.kind,
		Channel:   w.channel,
		WrapWidth: w.width,
		Height:    w.height,
		ActiveTab: -1,
	}
	if w.kind == schema.WindowTabbed {
		snap.Tabs = w.tabSnapshots()
		snap.ActiveTab = w.active
	}
	return snap
}
