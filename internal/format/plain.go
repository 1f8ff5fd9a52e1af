package format

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"pkt.systems/chansync/schema"
)

const tabExpansion = "    "

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// Plain turns raw producer text into a display line. Escape sequences are
// stripped, tabs expand to spaces, other control characters are dropped and
// URLs become link segments.
func Plain(channel schema.ChannelID, text string) schema.Line {
	return schema.Line{Channel: channel, Segments: linkify(Sanitize(text), schema.KindText)}
}

// System builds a notice line for messages the session itself emits.
func System(channel schema.ChannelID, text string) schema.Line {
	return schema.Line{Channel: channel, Segments: linkify(Sanitize(text), schema.KindSystem)}
}

// Echo builds a line that echoes typed input back behind a prompt.
func Echo(channel schema.ChannelID, prompt, text string) schema.Line {
	segs := []schema.Segment{{Text: Sanitize(prompt), Kind: schema.KindPrompt, Bold: true}}
	if clean := Sanitize(text); clean != "" {
		segs = append(segs, schema.Segment{Text: clean, Kind: schema.KindEcho})
	}
	return schema.Line{Channel: channel, Segments: segs}
}

// Lines splits text on newlines and converts each piece with Plain. A single
// trailing newline does not produce an empty line.
func Lines(channel schema.ChannelID, text string) []schema.Line {
	text = strings.TrimSuffix(text, "\n")
	parts := strings.Split(text, "\n")
	out := make([]schema.Line, 0, len(parts))
	for _, part := range parts {
		out = append(out, Plain(channel, part))
	}
	return out
}

// Sanitize removes terminal escape sequences and control characters.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = ansi.Strip(text)
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
		case r == '\r':
		case r == '\t':
			b.WriteString(tabExpansion)
		case r < 0x20 || r == 0x7f:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func linkify(text string, kind schema.SegmentKind) []schema.Segment {
	if text == "" {
		return nil
	}
	var segs []schema.Segment
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		end = start + len(strings.TrimRight(text[start:end], ".,;:!?)]}"))
		if end <= start {
			continue
		}
		if start > last {
			segs = append(segs, schema.Segment{Text: text[last:start], Kind: kind})
		}
		url := text[start:end]
		segs = append(segs, schema.Segment{Text: url, Kind: schema.KindLink, Link: url})
		last = end
	}
	if last < len(text) {
		segs = append(segs, schema.Segment{Text: text[last:], Kind: kind})
	}
	return segs
}
