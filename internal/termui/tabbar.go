package termui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
	"pkt.systems/chansync/internal/wrap"
	"pkt.systems/chansync/schema"
)

const maxTabName = 12

// renderTabBar draws the tabs that fit in width. windowStart is the first
// tab shown on the previous frame; the returned start keeps the bar from
// jumping while the active tab stays visible.
func renderTabBar(tabs []schema.TabSnapshot, width int, windowStart int) (string, int) {
	if width <= 0 {
		width = schema.DefaultWrapWidth
	}
	if len(tabs) == 0 {
		return fill(tabInactiveStyle.Render(" no tabs "), width), 0
	}
	labels := make([]string, 0, len(tabs))
	widths := make([]int, 0, len(tabs))
	activeIndex := 0
	totalWidth := 0
	for i, tab := range tabs {
		label := tabLabel(tab)
		labels = append(labels, label)
		w := wrap.Width(label)
		widths = append(widths, w)
		totalWidth += w
		if tab.Active {
			activeIndex = i
		}
	}

	window := tabWindow{start: 0, end: len(tabs)}
	if totalWidth > width {
		window = tabWindowFromStart(widths, windowStart, width)
		if activeIndex < window.start {
			window = tabWindowActiveLeft(widths, activeIndex, width)
		} else if activeIndex >= window.end {
			window = tabWindowActiveRight(widths, activeIndex, width)
		}
	}

	var b strings.Builder
	if window.leftHidden {
		b.WriteString(tabIndicatorStyle.Render("<"))
	}
	for i := window.start; i < window.end; i++ {
		b.WriteString(tabStyle(tabs[i]).Render(labels[i]))
	}
	avail := width
	if window.rightHidden {
		avail--
	}
	line := fill(ansi.Truncate(b.String(), avail, ""), avail)
	if window.rightHidden {
		line += tabIndicatorStyle.Render(">")
	}
	return line, window.start
}

func tabLabel(tab schema.TabSnapshot) string {
	name := truncate.StringWithTail(string(tab.Name), maxTabName, "…")
	if tab.Unread && !tab.Active {
		return fmt.Sprintf(" %s(%s) ", name, unreadBadge(tab.UnreadCount))
	}
	return " " + name + " "
}

func unreadBadge(n uint64) string {
	if n > 99 {
		return "99+"
	}
	return fmt.Sprintf("%d", n)
}

func tabStyle(tab schema.TabSnapshot) lipgloss.Style {
	switch {
	case tab.Active:
		return tabActiveStyle
	case tab.Unread:
		return tabUnreadStyle
	default:
		return tabInactiveStyle
	}
}

func fill(line string, width int) string {
	if pad := width - ansi.StringWidth(line); pad > 0 {
		line += tabBarStyle.Render(strings.Repeat(" ", pad))
	}
	return line
}

type tabWindow struct {
	start       int
	end         int
	leftHidden  bool
	rightHidden bool
}

func tabWindowFromStart(widths []int, start int, width int) tabWindow {
	n := len(widths)
	if n == 0 {
		return tabWindow{}
	}
	if start < 0 {
		start = 0
	}
	if start >= n {
		start = n - 1
	}
	leftHidden := start > 0
	rightHidden := false
	end := start + 1
	for i := 0; i < 3; i++ {
		end = fitForward(widths, start, avail(width, leftHidden, rightHidden))
		rightHidden = end < n
	}
	return tabWindow{start: start, end: end, leftHidden: leftHidden, rightHidden: rightHidden}
}

func tabWindowActiveLeft(widths []int, activeIndex int, width int) tabWindow {
	return tabWindowFromStart(widths, clampIndex(activeIndex, len(widths)), width)
}

func tabWindowActiveRight(widths []int, activeIndex int, width int) tabWindow {
	n := len(widths)
	if n == 0 {
		return tabWindow{}
	}
	end := clampIndex(activeIndex, n) + 1
	rightHidden := end < n
	leftHidden := false
	start := end - 1
	for i := 0; i < 3; i++ {
		start = fitBackward(widths, end, avail(width, leftHidden, rightHidden))
		leftHidden = start > 0
	}
	return tabWindow{start: start, end: end, leftHidden: leftHidden, rightHidden: rightHidden}
}

func avail(width int, leftHidden, rightHidden bool) int {
	if leftHidden {
		width--
	}
	if rightHidden {
		width--
	}
	if width < 1 {
		width = 1
	}
	return width
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// fitForward returns the end index of the tabs starting at start that fit in
// avail columns. At least one tab is always included.
func fitForward(widths []int, start int, avail int) int {
	n := len(widths)
	if start >= n {
		return n
	}
	sum := 0
	end := start
	for i := start; i < n; i++ {
		if sum+widths[i] > avail {
			break
		}
		sum += widths[i]
		end = i + 1
	}
	if end == start {
		end = start + 1
	}
	return end
}

// fitBackward is fitForward walking left from end.
func fitBackward(widths []int, end int, avail int) int {
	if end < 1 {
		return 0
	}
	if end > len(widths) {
		end = len(widths)
	}
	sum := 0
	start := end
	for i := end - 1; i >= 0; i-- {
		if sum+widths[i] > avail {
			break
		}
		sum += widths[i]
		start = i
	}
	if start == end {
		start = end - 1
	}
	return start
}
