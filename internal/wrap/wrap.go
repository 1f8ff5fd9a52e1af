// Package wrap folds styled lines into display rows of a fixed column width.
package wrap

import (
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"pkt.systems/chansync/schema"
)

// cell is one rune of the flattened line, addressed back into its segment.
type cell struct {
	seg   int
	start int
	end   int
	width int
	space bool
}

type token struct {
	start int
	end   int
	width int
	space bool
}

// Segments wraps segs at width display columns and returns one segment slice
// per row. Whitespace is kept, so the rows concatenate back to the input.
// Words that do not fit on a partially filled row move to the next row;
// words wider than the row are broken at the column edge. Whitespace that
// runs past the edge after a word hangs off the end of that row instead of
// opening a blank row, so only trailing whitespace may exceed width. A width
// of zero or less disables wrapping. An empty line yields a single empty row.
func Segments(segs []schema.Segment, width int) [][]schema.Segment {
	cells := flatten(segs)
	if len(cells) == 0 {
		return [][]schema.Segment{nil}
	}
	if width <= 0 {
		return [][]schema.Segment{slice(segs, cells)}
	}
	breaks := breakpoints(cells, tokenize(cells), width)
	rows := make([][]schema.Segment, 0, len(breaks)+1)
	start := 0
	for _, end := range breaks {
		rows = append(rows, slice(segs, cells[start:end]))
		start = end
	}
	rows = append(rows, slice(segs, cells[start:]))
	return rows
}

// Width returns the display width of text in terminal columns.
func Width(text string) int {
	return runewidth.StringWidth(text)
}

func flatten(segs []schema.Segment) []cell {
	total := 0
	for _, seg := range segs {
		total += len(seg.Text)
	}
	if total == 0 {
		return nil
	}
	cells := make([]cell, 0, total)
	for i, seg := range segs {
		text := seg.Text
		for offset := 0; offset < len(text); {
			r, size := utf8.DecodeRuneInString(text[offset:])
			cells = append(cells, cell{
				seg:   i,
				start: offset,
				end:   offset + size,
				width: runewidth.RuneWidth(r),
				space: unicode.IsSpace(r),
			})
			offset += size
		}
	}
	return cells
}

// tokenize groups cells into alternating runs of whitespace and non-whitespace.
// Runs cross segment boundaries so a styled word is still one word.
func tokenize(cells []cell) []token {
	var tokens []token
	for i := 0; i < len(cells); {
		tok := token{start: i, space: cells[i].space}
		for i < len(cells) && cells[i].space == tok.space {
			tok.width += cells[i].width
			i++
		}
		tok.end = i
		tokens = append(tokens, tok)
	}
	return tokens
}

// breakpoints returns the cell indexes at which new rows start.
func breakpoints(cells []cell, tokens []token, width int) []int {
	var breaks []int
	col := 0
	// words is set once the current row holds a non-space cell.
	words := false
	place := func(i int) {
		w := cells[i].width
		if col > 0 && col+w > width {
			breaks = append(breaks, i)
			col = 0
			words = false
		}
		col += w
		if !cells[i].space {
			words = true
		}
	}
	for _, tok := range tokens {
		if tok.space {
			for i := tok.start; i < tok.end; i++ {
				if words && col+cells[i].width > width {
					col = width
					continue
				}
				place(i)
			}
			continue
		}
		if col+tok.width <= width {
			col += tok.width
			words = true
			continue
		}
		if col > 0 {
			breaks = append(breaks, tok.start)
			col = 0
			words = false
		}
		if tok.width <= width {
			col = tok.width
			words = true
			continue
		}
		for i := tok.start; i < tok.end; i++ {
			place(i)
		}
	}
	return breaks
}

// slice rebuilds styled segments for a contiguous run of cells. Pieces of the
// same source segment are joined; different segments are never merged.
func slice(segs []schema.Segment, cells []cell) []schema.Segment {
	if len(cells) == 0 {
		return nil
	}
	out := make([]schema.Segment, 0, 2)
	runStart := 0
	for i := 1; i <= len(cells); i++ {
		if i < len(cells) && cells[i].seg == cells[runStart].seg {
			continue
		}
		src := segs[cells[runStart].seg]
		piece := src
		piece.Text = src.Text[cells[runStart].start:cells[i-1].end]
		out = append(out, piece)
		runStart = i
	}
	return out
}
