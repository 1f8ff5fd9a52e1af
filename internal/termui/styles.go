package termui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"pkt.systems/chansync/schema"
)

var (
	barBg       = lipgloss.Color("236")
	barFg       = lipgloss.Color("250")
	accent      = lipgloss.Color("39")
	textOnAccnt = lipgloss.Color("16")
	unreadFg    = lipgloss.Color("214")
	muted       = lipgloss.Color("244")
	danger      = lipgloss.Color("203")

	tabBarStyle = lipgloss.NewStyle().
			Background(barBg).
			Foreground(barFg)

	tabActiveStyle = lipgloss.NewStyle().
			Background(accent).
			Foreground(textOnAccnt).
			Bold(true)

	tabInactiveStyle = tabBarStyle

	tabUnreadStyle = tabBarStyle.
			Foreground(unreadFg).
			Bold(true)

	tabIndicatorStyle = tabBarStyle.
				Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(muted)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(danger).
				Bold(true)
)

// segmentStyle maps a producer-styled segment onto a lipgloss style. Colors
// are already resolved by the producer; only the segment kind adds chrome.
func segmentStyle(seg schema.Segment) lipgloss.Style {
	style := lipgloss.NewStyle()
	if seg.FG != "" {
		style = style.Foreground(lipgloss.Color(seg.FG))
	}
	if seg.BG != "" {
		style = style.Background(lipgloss.Color(seg.BG))
	}
	if seg.Bold {
		style = style.Bold(true)
	}
	switch seg.Kind {
	case schema.KindTimestamp:
		if seg.FG == "" {
			style = style.Foreground(muted)
		}
	case schema.KindLink:
		style = style.Underline(true)
	case schema.KindSystem:
		if seg.FG == "" {
			style = style.Foreground(unreadFg)
		}
	case schema.KindEcho:
		style = style.Italic(true)
	}
	return style
}

// renderRow paints a row, styling each run of same-style segments once.
func renderRow(row schema.Row) string {
	var b strings.Builder
	segs := row.Segments
	for start := 0; start < len(segs); {
		end := start + 1
		text := segs[start].Text
		for end < len(segs) && segs[end].SameStyle(segs[start]) {
			text += segs[end].Text
			end++
		}
		b.WriteString(segmentStyle(segs[start]).Render(text))
		start = end
	}
	return b.String()
}
