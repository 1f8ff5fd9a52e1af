package core

import (
	"regexp"

	"pkt.systems/chansync/internal/wrap"
	"pkt.systems/chansync/schema"
)

// renderBuffer holds the wrapped rows projected from a channel log together
// with scroll and search state. ScrollOffset counts rows from the bottom; 0
// means the newest row is visible.
type renderBuffer struct {
	width        int
	height       int
	rows         []schema.Row
	lineRows     []int
	scrollOffset int

	pending     bool
	pendingChan schema.ChannelID
	pendingSegs []schema.Segment

	search *searchState
}

type searchState struct {
	pattern string
	re      *regexp.Regexp
	matches []int
	current int
}

func newRenderBuffer(width, height int) *renderBuffer {
	if width < 0 {
		width = 0
	}
	if height <= 0 {
		height = schema.DefaultViewportHeight
	}
	return &renderBuffer{width: width, height: height}
}

// beginLine starts accumulating segments for one logical line.
func (b *renderBuffer) beginLine(channel schema.ChannelID) {
	b.pending = true
	b.pendingChan = channel
	b.pendingSegs = b.pendingSegs[:0]
}

func (b *renderBuffer) feed(seg schema.Segment) {
	b.pendingSegs = append(b.pendingSegs, seg)
}

// endLine wraps the accumulated line into rows and appends them. It returns
// the number of rows added. A scrolled-up view stays anchored on the same
// content.
func (b *renderBuffer) endLine() int {
	if !b.pending {
		return 0
	}
	b.pending = false
	wrapped := wrap.Segments(b.pendingSegs, b.width)
	start := len(b.rows)
	for _, segs := range wrapped {
		b.rows = append(b.rows, schema.Row{Channel: b.pendingChan, Segments: segs})
	}
	b.lineRows = append(b.lineRows, len(wrapped))
	if b.scrollOffset > 0 {
		b.scrollOffset += len(wrapped)
	}
	b.extendSearch(start)
	b.clamp()
	return len(wrapped)
}

// reset drops every row. Scroll offset is kept and clamped once rows return.
func (b *renderBuffer) reset() {
	b.rows = nil
	b.lineRows = nil
	b.pending = false
	if b.search != nil {
		b.search.matches = nil
		b.search.current = -1
	}
}

// retainLines drops rows belonging to the oldest lines so that at most n
// logical lines remain.
func (b *renderBuffer) retainLines(n int) {
	if n < 0 {
		n = 0
	}
	drop := len(b.lineRows) - n
	if drop <= 0 {
		return
	}
	rows := 0
	for _, count := range b.lineRows[:drop] {
		rows += count
	}
	b.lineRows = append([]int(nil), b.lineRows[drop:]...)
	b.rows = append([]schema.Row(nil), b.rows[rows:]...)
	b.shiftSearch(rows)
	b.clamp()
}

func (b *renderBuffer) setWidth(width int) {
	if width < 0 {
		width = 0
	}
	b.width = width
}

func (b *renderBuffer) setHeight(height int) {
	if height <= 0 {
		height = 1
	}
	b.height = height
	b.clamp()
}

// Scroll moves the viewport. Amount applies to line-wise scrolling and is
// ignored for page and jump directions.
func (b *renderBuffer) Scroll(dir schema.ScrollDirection, amount int) {
	if amount <= 0 {
		amount = 1
	}
	switch dir {
	case schema.ScrollUp:
		b.scrollOffset += amount
	case schema.ScrollDown:
		b.scrollOffset -= amount
	case schema.ScrollPageUp:
		b.scrollOffset += b.page()
	case schema.ScrollPageDown:
		b.scrollOffset -= b.page()
	case schema.ScrollTop:
		b.scrollOffset = maxScroll(len(b.rows), b.height)
	case schema.ScrollBottom:
		b.scrollOffset = 0
	}
	b.clamp()
}

func (b *renderBuffer) page() int {
	if b.height > 1 {
		return b.height - 1
	}
	return 1
}

func (b *renderBuffer) clamp() {
	b.scrollOffset = clampScroll(b.scrollOffset, len(b.rows), b.height)
}

// View returns the visible rows and scroll state.
func (b *renderBuffer) View() schema.View {
	total := len(b.rows)
	limit := b.height
	if limit <= 0 || limit > total {
		limit = total
	}
	b.clamp()
	end := total - b.scrollOffset
	if end < 0 {
		end = 0
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	rows := make([]schema.Row, end-start)
	copy(rows, b.rows[start:end])
	return schema.View{
		Rows:         rows,
		TotalRows:    total,
		ScrollOffset: b.scrollOffset,
		AtBottom:     b.scrollOffset == 0,
		WrapWidth:    b.width,
		Search:       b.searchStatus(),
	}
}

// StartSearch indexes every row matching pattern (case-insensitive) and moves
// to the most recent match. A pattern that is not a valid regular expression
// is matched literally. An empty pattern clears the search.
func (b *renderBuffer) StartSearch(pattern string) schema.SearchStatus {
	if pattern == "" {
		b.ClearSearch()
		return schema.SearchStatus{CurrentMatch: -1}
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))
	}
	b.search = &searchState{pattern: pattern, re: re, current: -1}
	b.extendSearch(0)
	if n := len(b.search.matches); n > 0 {
		b.search.current = n - 1
		b.reveal(b.search.matches[n-1])
	}
	return b.searchStatus()
}

func (b *renderBuffer) ClearSearch() {
	b.search = nil
}

// NextMatch advances to the following match, wrapping after the last one.
func (b *renderBuffer) NextMatch() schema.SearchStatus {
	return b.stepMatch(1)
}

// PrevMatch moves to the preceding match, wrapping before the first one.
func (b *renderBuffer) PrevMatch() schema.SearchStatus {
	return b.stepMatch(-1)
}

func (b *renderBuffer) stepMatch(delta int) schema.SearchStatus {
	if b.search == nil || len(b.search.matches) == 0 {
		return b.searchStatus()
	}
	n := len(b.search.matches)
	b.search.current = ((b.search.current+delta)%n + n) % n
	b.reveal(b.search.matches[b.search.current])
	return b.searchStatus()
}

// rebuildSearch recomputes matches from scratch after a full resync.
func (b *renderBuffer) rebuildSearch() {
	if b.search == nil {
		return
	}
	b.search.matches = nil
	b.search.current = -1
	b.extendSearch(0)
	if n := len(b.search.matches); n > 0 {
		b.search.current = n - 1
	}
}

func (b *renderBuffer) extendSearch(from int) {
	if b.search == nil {
		return
	}
	for i := from; i < len(b.rows); i++ {
		if b.search.re.MatchString(b.rows[i].Text()) {
			b.search.matches = append(b.search.matches, i)
		}
	}
	if b.search.current < 0 && len(b.search.matches) > 0 {
		b.search.current = 0
	}
}

// shiftSearch renumbers matches after the oldest rows rows were dropped.
func (b *renderBuffer) shiftSearch(rows int) {
	if b.search == nil || rows <= 0 {
		return
	}
	kept := b.search.matches[:0]
	removed := 0
	for _, idx := range b.search.matches {
		if idx < rows {
			removed++
			continue
		}
		kept = append(kept, idx-rows)
	}
	b.search.matches = kept
	if len(kept) == 0 {
		b.search.current = -1
		return
	}
	b.search.current -= removed
	if b.search.current < 0 {
		b.search.current = 0
	}
}

// reveal scrolls the minimum distance needed to bring row into view.
func (b *renderBuffer) reveal(row int) {
	total := len(b.rows)
	end := total - b.scrollOffset
	start := end - b.height
	switch {
	case row >= end:
		b.scrollOffset = total - row - 1
	case row < start:
		b.scrollOffset = total - row - b.height
	}
	b.clamp()
}

func (b *renderBuffer) searchStatus() schema.SearchStatus {
	if b.search == nil {
		return schema.SearchStatus{CurrentMatch: -1}
	}
	return schema.SearchStatus{
		Active:       true,
		Pattern:      b.search.pattern,
		CurrentMatch: b.search.current,
		TotalMatches: len(b.search.matches),
	}
}

func maxScroll(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	if total <= limit {
		return 0
	}
	return total - limit
}

func clampScroll(offset, total, limit int) int {
	max := maxScroll(total, limit)
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}
