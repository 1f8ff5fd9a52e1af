package core

import (
	"pkt.systems/chansync/internal/logx"
	"pkt.systems/chansync/schema"
)

// lineSource is anything a destination can be synced from: a versioned log
// that retains a bounded tail of lines.
type lineSource interface {
	Version() uint64
	Len() int
	Tail(n int) []schema.Line
}

// syncMode reports which path a sync took.
type syncMode int

const (
	syncSkipped syncMode = iota
	syncIncremental
	syncFull
)

func (m syncMode) String() string {
	switch m {
	case syncIncremental:
		return "incremental"
	case syncFull:
		return "full"
	default:
		return "skipped"
	}
}

// SyncStats counts the sync paths taken during one Tick.
type SyncStats struct {
	Full        int
	Incremental int
	Skipped     int
}

func (s *SyncStats) add(mode syncMode) {
	switch mode {
	case syncFull:
		s.Full++
	case syncIncremental:
		s.Incremental++
	default:
		s.Skipped++
	}
}

// replay brings buf up to date with src given the last version applied to it.
// A never-synced buffer, or one that missed more lines than src still
// retains, is rebuilt from every retained line; otherwise only the newest
// delta lines are replayed.
func replay(src lineSource, last uint64, buf *renderBuffer) syncMode {
	version := src.Version()
	if version == last {
		return syncSkipped
	}
	retained := src.Len()
	if last == 0 || version < last || version-last > uint64(retained) {
		offset := buf.scrollOffset
		buf.scrollOffset = 0
		buf.reset()
		for _, line := range src.Tail(retained) {
			replayLine(buf, line)
		}
		buf.scrollOffset = offset
		buf.clamp()
		buf.rebuildSearch()
		return syncFull
	}
	delta := int(version - last)
	for _, line := range src.Tail(delta) {
		replayLine(buf, line)
	}
	buf.retainLines(retained)
	return syncIncremental
}

func replayLine(buf *renderBuffer, line schema.Line) {
	buf.beginLine(line.Channel)
	for _, seg := range line.Segments {
		buf.feed(seg)
	}
	buf.endLine()
}

// syncDestination applies pending lines to one destination and advances its
// cursor to the source version.
func (c *Core) syncDestination(handle Destination, d *destination) syncMode {
	last := c.cursors.Get(handle)
	mode := replay(d.source, last, d.buf)
	if mode != syncSkipped {
		c.cursors.Advance(handle, d.source.Version())
		logx.WithDestination(c.logger, int(handle), d.window.name, d.tabName()).Trace(
			"sync applied",
			"mode", mode.String(),
			"from", last,
			"to", d.source.Version(),
			"rows", len(d.buf.rows),
		)
	}
	return mode
}

// Tick syncs every visible destination: each text window and the active tab
// of each tabbed window. Hidden tabs keep accumulating delta.
func (c *Core) Tick() SyncStats {
	var stats SyncStats
	for _, win := range c.windows {
		handle := win.visibleDestination()
		d, ok := c.dests.Get(int(handle))
		if !ok {
			continue
		}
		stats.add(c.syncDestination(handle, d))
	}
	return stats
}

// SyncAndGetRows syncs dest and returns its visible rows.
func (c *Core) SyncAndGetRows(dest Destination) (schema.View, error) {
	d, err := c.destination(dest)
	if err != nil {
		return schema.View{}, err
	}
	c.syncDestination(dest, d)
	return d.buf.View(), nil
}
