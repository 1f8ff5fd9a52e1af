package schema

import (
	"errors"
	"testing"
)

func TestNormalizeChannelID(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  ChannelID
		valid bool
	}{
		{"simple", "main", "main", true},
		{"trimmed", "  thoughts ", "thoughts", true},
		{"with-dots", "room.objs", "room.objs", true},
		{"with-colon", "irc:#chan", "", false},
		{"namespaced", "irc:chan", "irc:chan", true},
		{"empty", "", "", false},
		{"space-only", "   ", "", false},
		{"inner-space", "main log", "", false},
		{"symbol", "main@", "", false},
	}

	for _, tc := range cases {
		got, err := NormalizeChannelID(tc.input)
		if tc.valid && err != nil {
			t.Fatalf("case %q expected valid, got error: %v", tc.name, err)
		}
		if !tc.valid {
			if err == nil {
				t.Fatalf("case %q expected error, got %q", tc.name, got)
			}
			if !errors.Is(err, ErrInvalidName) {
				t.Fatalf("case %q expected ErrInvalidName, got %v", tc.name, err)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("case %q expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestNormalizeTabName(t *testing.T) {
	if got, err := NormalizeTabName("  Thoughts "); err != nil || got != "Thoughts" {
		t.Fatalf("expected Thoughts, got %q (%v)", got, err)
	}
	if got, err := NormalizeTabName("Room Talk"); err != nil || got != "Room Talk" {
		t.Fatalf("expected inner spaces to survive, got %q (%v)", got, err)
	}
	if _, err := NormalizeTabName(" \t "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for blank name, got %v", err)
	}
	if _, err := NormalizeTabName("bad\x07name"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for control char, got %v", err)
	}
}

func TestNormalizeCoreConfigDefaults(t *testing.T) {
	cfg, err := NormalizeCoreConfig(CoreConfig{
		Windows: []WindowConfig{
			{Name: "main"},
			{Name: "comms", Tabs: []TabConfig{{Name: "All", Streams: []ChannelID{"say", " ", "tell"}}}},
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.DefaultCapacity != DefaultChannelCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultChannelCapacity, cfg.DefaultCapacity)
	}
	if cfg.TabCapacity != DefaultTabCapacity {
		t.Fatalf("expected tab capacity %d, got %d", DefaultTabCapacity, cfg.TabCapacity)
	}
	main := cfg.Windows[0]
	if main.Kind != WindowText || main.Channel != "main" {
		t.Fatalf("expected text window bound to main, got %+v", main)
	}
	if main.WrapWidth != DefaultWrapWidth || main.Height != DefaultViewportHeight {
		t.Fatalf("expected default geometry, got %dx%d", main.WrapWidth, main.Height)
	}
	comms := cfg.Windows[1]
	if comms.Kind != WindowTabbed {
		t.Fatalf("expected tabbed window, got %q", comms.Kind)
	}
	if len(comms.Tabs[0].Streams) != 2 {
		t.Fatalf("expected blank stream dropped, got %v", comms.Tabs[0].Streams)
	}
}

func TestNormalizeCoreConfigRejectsDuplicates(t *testing.T) {
	_, err := NormalizeCoreConfig(CoreConfig{
		Windows: []WindowConfig{{Name: "main"}, {Name: " main "}},
	})
	if !errors.Is(err, ErrDuplicateWindow) {
		t.Fatalf("expected ErrDuplicateWindow, got %v", err)
	}
	_, err = NormalizeCoreConfig(CoreConfig{
		Windows: []WindowConfig{{
			Name: "comms",
			Tabs: []TabConfig{{Name: "All"}, {Name: "All"}},
		}},
	})
	if !errors.Is(err, ErrDuplicateTab) {
		t.Fatalf("expected ErrDuplicateTab, got %v", err)
	}
}

func TestNormalizeCoreConfigRejectsBadCapacity(t *testing.T) {
	_, err := NormalizeCoreConfig(CoreConfig{ChannelCapacity: map[ChannelID]int{"main": 0}})
	if err == nil {
		t.Fatalf("expected error for zero capacity")
	}
}
