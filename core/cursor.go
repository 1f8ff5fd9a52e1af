package core

// syncCursors remembers, per destination, the last channel version fully
// applied to its render buffer. Entries are created lazily at zero and only
// ever move forward; invalidation forgets an entry instead of lowering it.
type syncCursors struct {
	last map[Destination]uint64
}

func newSyncCursors() *syncCursors {
	return &syncCursors{last: make(map[Destination]uint64)}
}

// Get returns the last synced version for dest (zero if never synced).
func (c *syncCursors) Get(dest Destination) uint64 {
	return c.last[dest]
}

// Advance records version for dest unless it would move the cursor back.
func (c *syncCursors) Advance(dest Destination, version uint64) {
	if version < c.last[dest] {
		return
	}
	c.last[dest] = version
}

// Invalidate forgets dest so its next sync takes the full-resync path.
func (c *syncCursors) Invalidate(dest Destination) {
	delete(c.last, dest)
}
