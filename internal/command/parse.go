package command

import (
	"strings"
	"unicode"
)

// Command is one slash command typed into a window.
type Command struct {
	// Name is lowercased. It is empty for a bare "/".
	Name string
	Args []string
	// Remainder is the text after Name with its inner spacing intact, for
	// arguments such as search patterns.
	Remainder string
}

// Parse splits input into a Command. It reports false when input does not
// start with "/" after leading whitespace.
func Parse(input string) (Command, bool) {
	line := strings.TrimLeftFunc(input, unicode.IsSpace)
	body, ok := strings.CutPrefix(line, "/")
	if !ok {
		return Command{}, false
	}
	body = strings.TrimRightFunc(body, unicode.IsSpace)

	var cmd Command
	start := -1
	field := func(end int) {
		if cmd.Name == "" && cmd.Args == nil {
			cmd.Name = strings.ToLower(body[start:end])
			cmd.Remainder = strings.TrimLeftFunc(body[end:], unicode.IsSpace)
			cmd.Args = []string{}
		} else {
			cmd.Args = append(cmd.Args, body[start:end])
		}
		start = -1
	}
	for i, r := range body {
		switch {
		case unicode.IsSpace(r):
			if start >= 0 {
				field(i)
			}
		case start < 0:
			start = i
		}
	}
	if start >= 0 {
		field(len(body))
	}
	return cmd, true
}
