package wrap

import (
	"strings"
	"testing"

	"pkt.systems/chansync/schema"
)

func TestTextHardBreaksPlainRun(t *testing.T) {
	cases := []struct {
		length int
		width  int
	}{
		{1, 10},
		{10, 10},
		{11, 10},
		{25, 7},
		{100, 1},
		{99, 33},
	}
	for _, tc := range cases {
		text := strings.Repeat("x", tc.length)
		rows := wrapText(text, tc.width)
		want := (tc.length + tc.width - 1) / tc.width
		if len(rows) != want {
			t.Fatalf("len %d width %d: expected %d rows, got %d", tc.length, tc.width, want, len(rows))
		}
		for i, row := range rows {
			if w := Width(row); w > tc.width {
				t.Fatalf("len %d width %d: row %d has width %d", tc.length, tc.width, i, w)
			}
		}
		if got := strings.Join(rows, ""); got != text {
			t.Fatalf("len %d width %d: rows do not reproduce text", tc.length, tc.width)
		}
	}
}

func TestTextPrefersWhitespaceBreaks(t *testing.T) {
	rows := wrapText("the quick brown fox", 10)
	want := []string{"the quick ", "brown fox"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %q", len(want), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], rows[i])
		}
	}
}

func TestTextMovesWordToNextRow(t *testing.T) {
	rows := wrapText("aaaa bbbbbb", 8)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %q", rows)
	}
	if rows[0] != "aaaa " || rows[1] != "bbbbbb" {
		t.Fatalf("unexpected rows %q", rows)
	}
}

func TestTextLongWordAfterShortWord(t *testing.T) {
	rows := wrapText("ab cdefghijkl", 5)
	want := []string{"ab ", "cdefg", "hijkl"}
	if strings.Join(rows, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, rows)
	}
}

func TestTextTrailingWhitespaceHangs(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{text: "hello world", width: 5, want: []string{"hello ", "world"}},
		{text: "abcd      efgh", width: 6, want: []string{"abcd      ", "efgh"}},
		{text: "ab  cd", width: 3, want: []string{"ab  ", "cd"}},
		{text: "hello ", width: 5, want: []string{"hello "}},
	}
	for _, tc := range tests {
		rows := wrapText(tc.text, tc.width)
		if strings.Join(rows, "|") != strings.Join(tc.want, "|") {
			t.Fatalf("%q at %d: expected %q, got %q", tc.text, tc.width, tc.want, rows)
		}
		for i, row := range rows {
			if strings.TrimSpace(row) == "" {
				t.Fatalf("%q at %d: row %d is blank", tc.text, tc.width, i)
			}
			if w := Width(strings.TrimRight(row, " ")); w > tc.width {
				t.Fatalf("%q at %d: row %d content exceeds width: %q", tc.text, tc.width, i, row)
			}
		}
		if strings.Join(rows, "") != tc.text {
			t.Fatalf("%q at %d: rows do not reproduce text: %q", tc.text, tc.width, rows)
		}
	}
}

func TestTextLeadingWhitespaceStillWraps(t *testing.T) {
	rows := wrapText("      ab", 4)
	want := []string{"    ", "  ab"}
	if strings.Join(rows, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, rows)
	}
}

func TestTextEmptyLineYieldsOneRow(t *testing.T) {
	rows := wrapText("", 10)
	if len(rows) != 1 || rows[0] != "" {
		t.Fatalf("expected one empty row, got %q", rows)
	}
}

func TestTextZeroWidthDisablesWrap(t *testing.T) {
	text := strings.Repeat("word ", 50)
	rows := wrapText(text, 0)
	if len(rows) != 1 || rows[0] != text {
		t.Fatalf("expected unwrapped row, got %d rows", len(rows))
	}
}

func TestTextWideRunesDoNotStraddleEdge(t *testing.T) {
	rows := wrapText("a世界世", 4)
	for i, row := range rows {
		if Width(row) > 4 {
			t.Fatalf("row %d exceeds width: %q", i, row)
		}
	}
	if strings.Join(rows, "") != "a世界世" {
		t.Fatalf("rows do not reproduce text: %q", rows)
	}
	if rows[0] != "a世" {
		t.Fatalf("expected wide rune pushed to next row, got %q", rows)
	}
}

func TestSegmentsKeepStyleAcrossBreak(t *testing.T) {
	segs := []schema.Segment{
		{Text: "red ", FG: "#ff0000", Kind: schema.KindText},
		{Text: "boldlongword", Bold: true, Kind: schema.KindText},
		{Text: " link", FG: "#0000ff", Kind: schema.KindLink, Link: "https://example.com"},
	}
	rows := Segments(segs, 8)
	var text strings.Builder
	for i, row := range rows {
		width := 0
		for _, seg := range row {
			width += Width(seg.Text)
			text.WriteString(seg.Text)
			switch {
			case strings.Contains("red ", seg.Text) && seg.FG == "#ff0000":
			case seg.Bold && seg.FG == "":
			case seg.Kind == schema.KindLink && seg.Link == "https://example.com" && seg.FG == "#0000ff":
			default:
				t.Fatalf("row %d: segment %+v lost its style", i, seg)
			}
		}
		if width > 8 {
			t.Fatalf("row %d exceeds width", i)
		}
	}
	if text.String() != "red boldlongword link" {
		t.Fatalf("rows do not reproduce text: %q", text.String())
	}
}

func TestSegmentsDoNotMergeAdjacentSegments(t *testing.T) {
	segs := []schema.Segment{
		{Text: "ab", FG: "1"},
		{Text: "cd", FG: "1"},
	}
	rows := Segments(segs, 80)
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Fatalf("expected one row with two segments, got %+v", rows)
	}
}

func TestSegmentsStyledWordIsOneToken(t *testing.T) {
	segs := []schema.Segment{
		{Text: "xx "},
		{Text: "hel", Bold: true},
		{Text: "lo"},
	}
	rows := Segments(segs, 5)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if got := (schema.Row{Segments: rows[1]}).Text(); got != "hello" {
		t.Fatalf("expected styled word kept together, got %q", got)
	}
	if len(rows[1]) != 2 || !rows[1][0].Bold || rows[1][1].Bold {
		t.Fatalf("expected bold split preserved, got %+v", rows[1])
	}
}

func wrapText(text string, width int) []string {
	rows := Segments([]schema.Segment{{Text: text, Kind: schema.KindText}}, width)
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, schema.Row{Segments: row}.Text())
	}
	return out
}
