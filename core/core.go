package core

import (
	"context"
	"fmt"
	"time"

	"pkt.systems/chansync/internal/format"
	"pkt.systems/chansync/internal/logx"
	"pkt.systems/chansync/schema"
	"pkt.systems/pslog"
)

// Core owns every channel log, window and destination. It is not safe for
// concurrent use; all methods must be called from the goroutine that drives
// rendering.
type Core struct {
	cfg         schema.CoreConfig
	logger      pslog.Logger
	sink        EventSink
	now         func() time.Time
	channels    map[schema.ChannelID]*channelLog
	windows     []*window
	windowIndex map[schema.WindowName]*window
	dests       arena[destination]
	cursors     *syncCursors
	router      tabRouter
}

// destination pairs a source log with the render buffer projecting it.
type destination struct {
	window *window
	tab    *tab
	source *channelLog
	buf    *renderBuffer
}

func (d *destination) tabName() schema.TabName {
	if d.tab == nil {
		return ""
	}
	return d.tab.name
}

// New constructs a core from cfg, creating every configured window.
func New(cfg schema.CoreConfig, deps Deps) (*Core, error) {
	normalized, err := schema.NormalizeCoreConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	c := &Core{
		cfg:         normalized,
		logger:      logger,
		sink:        deps.EventSink,
		now:         now,
		channels:    make(map[schema.ChannelID]*channelLog),
		windowIndex: make(map[schema.WindowName]*window),
		cursors:     newSyncCursors(),
	}
	for _, win := range normalized.Windows {
		c.addWindow(win)
	}
	c.router.rebuild(c.windows)
	logger.Debug("core ready", "windows", len(c.windows), "default_capacity", normalized.DefaultCapacity, "tab_capacity", normalized.TabCapacity)
	return c, nil
}

// Append adds line to channel and routes it to subscribed tabs.
func (c *Core) Append(channel schema.ChannelID, line schema.Line) {
	line = line.Clone()
	line.Channel = channel
	c.channel(channel).Append(line)
	c.route(channel, line)
}

// AppendText sanitizes text into plain lines, one per newline, and appends
// them in order.
func (c *Core) AppendText(channel schema.ChannelID, text string) {
	for _, line := range format.Lines(channel, text) {
		c.Append(channel, line)
	}
}

// Clear empties channel. Destinations showing it resync on their next sync.
// Tab logs that merged earlier lines from channel are left alone.
func (c *Core) Clear(channel schema.ChannelID) {
	log := c.channel(channel)
	log.Clear()
	logx.WithChannel(c.logger, channel).Debug("channel cleared", "version", log.Version())
	c.emitChannelEvent(schema.ChannelEvent{Type: schema.ChannelEventCleared, Channel: channel, Version: log.Version()})
}

// Replace swaps the whole content of channel for lines. It is meant for
// list-style producers and does not route to tabs.
func (c *Core) Replace(channel schema.ChannelID, lines []schema.Line) {
	log := c.channel(channel)
	log.Clear()
	for _, line := range lines {
		line = line.Clone()
		line.Channel = channel
		log.Append(line)
	}
	logx.WithChannel(c.logger, channel).Debug("channel replaced", "lines", len(lines), "version", log.Version())
	c.emitChannelEvent(schema.ChannelEvent{Type: schema.ChannelEventReplaced, Channel: channel, Version: log.Version()})
}

// ChannelVersion returns the version of channel, zero if it has never been written.
func (c *Core) ChannelVersion(channel schema.ChannelID) uint64 {
	if log := c.channels[channel]; log != nil {
		return log.Version()
	}
	return 0
}

// ChannelLines returns a copy of the lines channel currently retains.
func (c *Core) ChannelLines(channel schema.ChannelID) []schema.Line {
	if log := c.channels[channel]; log != nil {
		return log.Lines()
	}
	return nil
}

func (c *Core) channel(id schema.ChannelID) *channelLog {
	log := c.channels[id]
	if log == nil {
		capacity := c.cfg.ChannelCapacity[id]
		if capacity <= 0 {
			capacity = c.cfg.DefaultCapacity
		}
		log = newChannelLog(id, capacity)
		c.channels[id] = log
	}
	return log
}

// AddWindow declares a new window at runtime.
func (c *Core) AddWindow(cfg schema.WindowConfig) error {
	normalized, err := schema.NormalizeWindowConfig(cfg)
	if err != nil {
		return err
	}
	if _, ok := c.windowIndex[normalized.Name]; ok {
		return fmt.Errorf("window %q: %w", normalized.Name, schema.ErrDuplicateWindow)
	}
	c.addWindow(normalized)
	c.router.rebuild(c.windows)
	return nil
}

// RemoveWindow drops a window and all of its destinations.
func (c *Core) RemoveWindow(name schema.WindowName) error {
	win, err := c.window(name)
	if err != nil {
		return err
	}
	c.releaseDestination(win.dest)
	for _, t := range win.tabs {
		c.releaseDestination(t.dest)
	}
	for i, current := range c.windows {
		if current == win {
			c.windows = append(c.windows[:i], c.windows[i+1:]...)
			break
		}
	}
	delete(c.windowIndex, name)
	c.router.rebuild(c.windows)
	logx.WithWindow(c.logger, name).Info("window removed")
	return nil
}

// Windows returns snapshots of every window in declaration order.
func (c *Core) Windows() []schema.WindowSnapshot {
	out := make([]schema.WindowSnapshot, 0, len(c.windows))
	for _, win := range c.windows {
		out = append(out, win.Snapshot())
	}
	return out
}

// Window returns a snapshot of one window.
func (c *Core) Window(name schema.WindowName) (schema.WindowSnapshot, error) {
	win, err := c.window(name)
	if err != nil {
		return schema.WindowSnapshot{}, err
	}
	return win.Snapshot(), nil
}

func (c *Core) addWindow(cfg schema.WindowConfig) {
	win := &window{
		name:    cfg.Name,
		kind:    cfg.Kind,
		channel: cfg.Channel,
		width:   cfg.WrapWidth,
		height:  cfg.Height,
	}
	switch cfg.Kind {
	case schema.WindowText:
		win.dest = c.allocDestination(&destination{
			window: win,
			source: c.channel(cfg.Channel),
			buf:    newRenderBuffer(win.width, win.height),
		})
	case schema.WindowTabbed:
		for _, tabCfg := range cfg.Tabs {
			win.tabs = append(win.tabs, c.newTab(win, tabCfg))
		}
	}
	c.windows = append(c.windows, win)
	c.windowIndex[win.name] = win
	logx.WithWindow(c.logger, win.name).Info("window added", "kind", win.kind, "tabs", len(win.tabs), "width", win.width)
}

func (c *Core) newTab(win *window, cfg schema.TabConfig) *tab {
	t := newTab(cfg, c.cfg.TabCapacity, win)
	t.dest = c.allocDestination(&destination{
		window: win,
		tab:    t,
		source: t.log,
		buf:    newRenderBuffer(win.width, win.height),
	})
	return t
}

func (c *Core) window(name schema.WindowName) (*window, error) {
	win := c.windowIndex[name]
	if win == nil {
		return nil, fmt.Errorf("window %q: %w", name, schema.ErrWindowNotFound)
	}
	return win, nil
}

func (c *Core) allocDestination(d *destination) Destination {
	return Destination(c.dests.Alloc(d))
}

func (c *Core) releaseDestination(handle Destination) {
	if handle == 0 {
		return
	}
	c.dests.Release(int(handle))
	c.cursors.Invalidate(handle)
}

func (c *Core) destination(handle Destination) (*destination, error) {
	d, ok := c.dests.Get(int(handle))
	if !ok {
		return nil, fmt.Errorf("destination %d: %w", handle, schema.ErrDestinationNotFound)
	}
	return d, nil
}

// WindowDestination returns the destination currently shown by a window: its
// own buffer for text windows, the active tab for tabbed ones.
func (c *Core) WindowDestination(name schema.WindowName) (Destination, error) {
	win, err := c.window(name)
	if err != nil {
		return 0, err
	}
	return win.visibleDestination(), nil
}

// TabDestination returns the destination of a named tab.
func (c *Core) TabDestination(window schema.WindowName, name schema.TabName) (Destination, error) {
	_, t, _, err := c.lookupTab(window, name)
	if err != nil {
		return 0, err
	}
	return t.dest, nil
}

// HandleResize sets the wrap width of dest. Existing rows are not reflowed
// until the next sync, which takes the full-resync path.
func (c *Core) HandleResize(dest Destination, width int) error {
	d, err := c.destination(dest)
	if err != nil {
		return err
	}
	c.resize(dest, d, width)
	return nil
}

func (c *Core) resize(handle Destination, d *destination, width int) {
	if width < 0 {
		width = 0
	}
	if d.buf.width == width {
		return
	}
	d.buf.setWidth(width)
	c.cursors.Invalidate(handle)
	logx.WithDestination(c.logger, int(handle), d.window.name, d.tabName()).Debug("destination resized", "width", width)
}

// ResizeWindow applies width and height to the window and every destination
// it owns.
func (c *Core) ResizeWindow(name schema.WindowName, width, height int) error {
	win, err := c.window(name)
	if err != nil {
		return err
	}
	win.width = width
	if height > 0 {
		win.height = height
	}
	handles := []Destination{win.dest}
	for _, t := range win.tabs {
		handles = append(handles, t.dest)
	}
	for _, handle := range handles {
		d, ok := c.dests.Get(int(handle))
		if !ok {
			continue
		}
		c.resize(handle, d, width)
		d.buf.setHeight(win.height)
	}
	return nil
}

// SetViewportHeight sets the number of rows dest shows at once.
func (c *Core) SetViewportHeight(dest Destination, height int) error {
	d, err := c.destination(dest)
	if err != nil {
		return err
	}
	d.buf.setHeight(height)
	return nil
}

// Scroll moves the viewport of dest.
func (c *Core) Scroll(dest Destination, dir schema.ScrollDirection, amount int) error {
	d, err := c.destination(dest)
	if err != nil {
		return err
	}
	d.buf.Scroll(dir, amount)
	return nil
}

// Search syncs dest and searches its rows for pattern. An empty pattern
// clears the search.
func (c *Core) Search(dest Destination, pattern string) (schema.SearchStatus, error) {
	d, err := c.destination(dest)
	if err != nil {
		return schema.SearchStatus{}, err
	}
	c.syncDestination(dest, d)
	return d.buf.StartSearch(pattern), nil
}

// NextMatch moves dest to its next search match.
func (c *Core) NextMatch(dest Destination) (schema.SearchStatus, error) {
	d, err := c.destination(dest)
	if err != nil {
		return schema.SearchStatus{}, err
	}
	return d.buf.NextMatch(), nil
}

// PrevMatch moves dest to its previous search match.
func (c *Core) PrevMatch(dest Destination) (schema.SearchStatus, error) {
	d, err := c.destination(dest)
	if err != nil {
		return schema.SearchStatus{}, err
	}
	return d.buf.PrevMatch(), nil
}

func (c *Core) emitTabEvent(win *window, event schema.TabEvent) {
	if c.sink == nil {
		return
	}
	event.Window = win.name
	if t := win.activeTab(); t != nil {
		event.ActiveTab = t.name
	}
	c.sink.OnTabEvent(event)
}

func (c *Core) emitChannelEvent(event schema.ChannelEvent) {
	if c.sink == nil {
		return
	}
	c.sink.OnChannelEvent(event)
}

func (c *Core) logTab(win *window, t *tab) pslog.Logger {
	return logx.WithTab(c.logger, win.name, t.name)
}
