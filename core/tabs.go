package core

import (
	"fmt"

	"pkt.systems/chansync/schema"
)

func (c *Core) tabbedWindow(name schema.WindowName) (*window, error) {
	win, err := c.window(name)
	if err != nil {
		return nil, err
	}
	if win.kind != schema.WindowTabbed {
		return nil, fmt.Errorf("window %q: %w", name, schema.ErrNotTabbed)
	}
	return win, nil
}

func (c *Core) lookupTab(window schema.WindowName, name schema.TabName) (*window, *tab, int, error) {
	win, err := c.tabbedWindow(window)
	if err != nil {
		return nil, nil, -1, err
	}
	idx := win.tabIndex(name)
	if idx < 0 {
		return nil, nil, -1, fmt.Errorf("window %q tab %q: %w", window, name, schema.ErrTabNotFound)
	}
	return win, win.tabs[idx], idx, nil
}

// AddTab appends a tab to a tabbed window. The new tab starts empty and
// inactive.
func (c *Core) AddTab(window schema.WindowName, cfg schema.TabConfig) error {
	win, err := c.tabbedWindow(window)
	if err != nil {
		return err
	}
	normalized, err := schema.NormalizeTabConfig(cfg)
	if err != nil {
		return err
	}
	if win.tabIndex(normalized.Name) >= 0 {
		return fmt.Errorf("window %q tab %q: %w", window, normalized.Name, schema.ErrDuplicateTab)
	}
	t := c.newTab(win, normalized)
	win.tabs = append(win.tabs, t)
	c.router.rebuild(c.windows)
	c.logTab(win, t).Info("tab added", "streams", len(t.streams), "timestamps", t.showTimestamps, "ignore_activity", t.ignoreActivity)
	c.emitTabEvent(win, schema.TabEvent{Type: schema.TabEventCreated, Tab: t.Snapshot(false)})
	return nil
}

// RemoveTab drops a tab. It returns false when the window or tab does not
// exist or when the tab is the last one left.
func (c *Core) RemoveTab(window schema.WindowName, name schema.TabName) bool {
	win, t, idx, err := c.lookupTab(window, name)
	if err != nil {
		c.logger.Debug("tab remove ignored", "window", window, "tab", name, "err", err)
		return false
	}
	if len(win.tabs) == 1 {
		c.logTab(win, t).Debug("tab remove rejected", "reason", "last tab")
		return false
	}
	wasActive := idx == win.active
	win.tabs = append(win.tabs[:idx], win.tabs[idx+1:]...)
	if idx < win.active {
		win.active--
	}
	if win.active >= len(win.tabs) {
		win.active = len(win.tabs) - 1
	}
	c.releaseDestination(t.dest)
	c.router.rebuild(c.windows)
	c.logTab(win, t).Info("tab removed")
	c.emitTabEvent(win, schema.TabEvent{Type: schema.TabEventClosed, Tab: t.Snapshot(false)})
	if wasActive {
		c.activate(win, win.active)
	}
	return true
}

// RenameTab renames a tab, keeping its log and unread counters.
func (c *Core) RenameTab(window schema.WindowName, oldName, newName schema.TabName) error {
	win, t, idx, err := c.lookupTab(window, oldName)
	if err != nil {
		return err
	}
	normalized, err := schema.NormalizeTabName(string(newName))
	if err != nil {
		return err
	}
	if normalized == t.name {
		return nil
	}
	if win.tabIndex(normalized) >= 0 {
		return fmt.Errorf("window %q tab %q: %w", window, normalized, schema.ErrDuplicateTab)
	}
	t.name = normalized
	c.logTab(win, t).Info("tab renamed", "old_name", oldName)
	c.emitTabEvent(win, schema.TabEvent{
		Type:    schema.TabEventRenamed,
		Tab:     t.Snapshot(idx == win.active),
		OldName: oldName,
	})
	return nil
}

// ReorderTabs rearranges tabs to match order, which must name every tab
// exactly once. The active tab stays active wherever it lands.
func (c *Core) ReorderTabs(window schema.WindowName, order []schema.TabName) error {
	win, err := c.tabbedWindow(window)
	if err != nil {
		return err
	}
	if len(order) != len(win.tabs) {
		return fmt.Errorf("window %q: %w", window, schema.ErrInvalidOrder)
	}
	active := win.activeTab()
	reordered := make([]*tab, 0, len(order))
	seen := make(map[schema.TabName]struct{}, len(order))
	for _, name := range order {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("window %q tab %q: %w", window, name, schema.ErrInvalidOrder)
		}
		seen[name] = struct{}{}
		idx := win.tabIndex(name)
		if idx < 0 {
			return fmt.Errorf("window %q tab %q: %w", window, name, schema.ErrInvalidOrder)
		}
		reordered = append(reordered, win.tabs[idx])
	}
	win.tabs = reordered
	for i, t := range win.tabs {
		if t == active {
			win.active = i
			break
		}
	}
	c.router.rebuild(c.windows)
	c.logger.Info("tabs reordered", "window", window, "active", win.active)
	c.emitTabEvent(win, schema.TabEvent{Type: schema.TabEventReordered, Tab: active.Snapshot(true)})
	return nil
}

// ActivateTab makes the tab at index active and clears its unread state.
func (c *Core) ActivateTab(window schema.WindowName, index int) error {
	win, err := c.tabbedWindow(window)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(win.tabs) {
		return fmt.Errorf("window %q index %d: %w", window, index, schema.ErrTabIndex)
	}
	c.activate(win, index)
	return nil
}

// ActivateTabByName activates a tab by name.
func (c *Core) ActivateTabByName(window schema.WindowName, name schema.TabName) error {
	win, _, idx, err := c.lookupTab(window, name)
	if err != nil {
		return err
	}
	c.activate(win, idx)
	return nil
}

// NextTab activates the tab after the active one, wrapping around.
func (c *Core) NextTab(window schema.WindowName) error {
	return c.stepTab(window, 1)
}

// PrevTab activates the tab before the active one, wrapping around.
func (c *Core) PrevTab(window schema.WindowName) error {
	return c.stepTab(window, -1)
}

func (c *Core) stepTab(window schema.WindowName, delta int) error {
	win, err := c.tabbedWindow(window)
	if err != nil {
		return err
	}
	n := len(win.tabs)
	c.activate(win, ((win.active+delta)%n+n)%n)
	return nil
}

// NextTabWithUnread activates the first unread tab after the active one. It
// reports whether one was found.
func (c *Core) NextTabWithUnread(window schema.WindowName) bool {
	win, err := c.tabbedWindow(window)
	if err != nil {
		return false
	}
	idx := nextWithUnread(win)
	if idx < 0 {
		return false
	}
	c.activate(win, idx)
	return true
}

// Tabs returns snapshots of a tabbed window's tabs in display order.
func (c *Core) Tabs(window schema.WindowName) ([]schema.TabSnapshot, error) {
	win, err := c.tabbedWindow(window)
	if err != nil {
		return nil, err
	}
	return win.tabSnapshots(), nil
}
