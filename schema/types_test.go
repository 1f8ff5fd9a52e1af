package schema

import "testing"

func TestSegmentSameStyle(t *testing.T) {
	base := Segment{Text: "a", FG: "203", Kind: KindText}
	tests := []struct {
		name  string
		other Segment
		want  bool
	}{
		{name: "text differs", other: Segment{Text: "b", FG: "203", Kind: KindText}, want: true},
		{name: "color differs", other: Segment{Text: "a", FG: "204", Kind: KindText}, want: false},
		{name: "bold differs", other: Segment{Text: "a", FG: "203", Bold: true, Kind: KindText}, want: false},
		{name: "kind differs", other: Segment{Text: "a", FG: "203", Kind: KindSystem}, want: false},
		{name: "link differs", other: Segment{Text: "a", FG: "203", Kind: KindText, Link: "https://x"}, want: false},
	}
	for _, tc := range tests {
		if got := base.SameStyle(tc.other); got != tc.want {
			t.Fatalf("%s: SameStyle = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestLineAndRowText(t *testing.T) {
	line := Line{Channel: "main", Segments: []Segment{{Text: "ab"}, {Text: "cd"}}}
	if line.Text() != "abcd" {
		t.Fatalf("line text = %q", line.Text())
	}
	if (Row{}).Text() != "" {
		t.Fatalf("empty row should have empty text")
	}
}
