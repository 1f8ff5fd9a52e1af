package schema

import (
	"strings"
	"unicode"
)

// NormalizeChannelID validates and normalizes a channel identifier.
// Allowed characters: A-Z, a-z, 0-9, '.', '_', '-', ':'.
func NormalizeChannelID(id string) (ChannelID, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	for _, r := range trimmed {
		if r == '.' || r == '_' || r == '-' || r == ':' {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return "", ErrInvalidName
	}
	return ChannelID(trimmed), nil
}

// NormalizeTabName trims a tab name and rejects empty or control-character names.
func NormalizeTabName(name string) (TabName, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", ErrInvalidName
		}
	}
	return TabName(trimmed), nil
}

// NormalizeWindowName applies the tab name rules to a window name.
func NormalizeWindowName(name string) (WindowName, error) {
	tab, err := NormalizeTabName(name)
	if err != nil {
		return "", err
	}
	return WindowName(tab), nil
}
