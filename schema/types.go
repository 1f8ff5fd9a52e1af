package schema

import "strings"

// ChannelID identifies a logical source of sequential lines (e.g. "main").
type ChannelID string

// WindowName is the user-facing name of a window.
type WindowName string

// TabName is the user-facing name of a tab inside a tabbed window.
type TabName string

// Color is a producer-resolved color value (e.g. "#ff8800" or "203").
// The empty string selects the terminal default.
type Color string

// SegmentKind tags a segment with its semantic role.
type SegmentKind string

const (
	// KindText is ordinary text.
	KindText SegmentKind = "text"
	// KindTimestamp is a timestamp prefix added by a tab.
	KindTimestamp SegmentKind = "timestamp"
	// KindLink is text with a link target.
	KindLink SegmentKind = "link"
	// KindPrompt is a prompt emitted by the source.
	KindPrompt SegmentKind = "prompt"
	// KindEcho is echoed user input.
	KindEcho SegmentKind = "echo"
	// KindSystem is a client-side notice.
	KindSystem SegmentKind = "system"
)

// Segment is a run of text sharing one style.
type Segment struct {
	Text string
	FG   Color
	BG   Color
	Bold bool
	Kind SegmentKind
	Link string
}

// SameStyle reports whether two segments render identically apart from text.
func (s Segment) SameStyle(other Segment) bool {
	return s.FG == other.FG &&
		s.BG == other.BG &&
		s.Bold == other.Bold &&
		s.Kind == other.Kind &&
		s.Link == other.Link
}

// Line is one fully assembled display line from a producer.
type Line struct {
	Channel  ChannelID
	Segments []Segment
}

// Text returns the concatenated plain text of the line.
func (l Line) Text() string {
	return segmentsText(l.Segments)
}

// Clone returns a copy that shares no segment storage with l.
func (l Line) Clone() Line {
	out := Line{Channel: l.Channel}
	if len(l.Segments) > 0 {
		out.Segments = append([]Segment(nil), l.Segments...)
	}
	return out
}

// Row is one wrapped display row.
type Row struct {
	Channel  ChannelID
	Segments []Segment
}

// Text returns the concatenated plain text of the row.
func (r Row) Text() string {
	return segmentsText(r.Segments)
}

func segmentsText(segs []Segment) string {
	switch len(segs) {
	case 0:
		return ""
	case 1:
		return segs[0].Text
	}
	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// ScrollDirection selects which way a viewport moves.
type ScrollDirection int

const (
	// ScrollUp moves away from the live tail (older rows).
	ScrollUp ScrollDirection = iota
	// ScrollDown moves toward the live tail (newer rows).
	ScrollDown
	// ScrollPageUp moves one viewport away from the tail.
	ScrollPageUp
	// ScrollPageDown moves one viewport toward the tail.
	ScrollPageDown
	// ScrollTop jumps to the oldest retained row.
	ScrollTop
	// ScrollBottom pins the viewport to the tail.
	ScrollBottom
)

// WindowKind selects how a window sources its content.
type WindowKind string

const (
	// WindowText renders one channel directly.
	WindowText WindowKind = "text"
	// WindowTabbed renders the active tab of a set of tabs.
	WindowTabbed WindowKind = "tabbed"
)
