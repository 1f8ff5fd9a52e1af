package schema

import (
	"fmt"
	"strings"
)

// DefaultChannelCapacity is the default number of lines a channel log retains.
const DefaultChannelCapacity = 1000

// DefaultTabCapacity is the default number of lines a tab's merged log retains.
const DefaultTabCapacity = 1000

// DefaultWrapWidth is used for destinations without an explicit width.
const DefaultWrapWidth = 80

// DefaultViewportHeight is used for destinations without an explicit height.
const DefaultViewportHeight = 24

// CoreConfig carries externally persisted layout values for the core.
type CoreConfig struct {
	DefaultCapacity int
	// ChannelCapacity overrides DefaultCapacity per channel.
	ChannelCapacity map[ChannelID]int
	TabCapacity     int
	Windows         []WindowConfig
}

// WindowConfig declares a window and, for tabbed windows, its tabs.
type WindowConfig struct {
	Name      WindowName
	Kind      WindowKind
	Channel   ChannelID
	WrapWidth int
	Height    int
	Tabs      []TabConfig
}

// TabConfig declares a tab inside a tabbed window.
type TabConfig struct {
	Name           TabName
	Streams        []ChannelID
	ShowTimestamps bool
	IgnoreActivity bool
}

// NormalizeCoreConfig applies defaults and validates the config.
func NormalizeCoreConfig(cfg CoreConfig) (CoreConfig, error) {
	if cfg.DefaultCapacity <= 0 {
		cfg.DefaultCapacity = DefaultChannelCapacity
	}
	if cfg.TabCapacity <= 0 {
		cfg.TabCapacity = DefaultTabCapacity
	}
	capacities := make(map[ChannelID]int, len(cfg.ChannelCapacity))
	for id, capacity := range cfg.ChannelCapacity {
		if _, err := NormalizeChannelID(string(id)); err != nil {
			return CoreConfig{}, fmt.Errorf("channel %q: %w", id, err)
		}
		if capacity <= 0 {
			return CoreConfig{}, fmt.Errorf("channel %q: capacity must be positive", id)
		}
		capacities[id] = capacity
	}
	cfg.ChannelCapacity = capacities

	seen := make(map[WindowName]struct{}, len(cfg.Windows))
	windows := make([]WindowConfig, 0, len(cfg.Windows))
	for _, win := range cfg.Windows {
		normalized, err := NormalizeWindowConfig(win)
		if err != nil {
			return CoreConfig{}, err
		}
		if _, ok := seen[normalized.Name]; ok {
			return CoreConfig{}, fmt.Errorf("window %q: %w", normalized.Name, ErrDuplicateWindow)
		}
		seen[normalized.Name] = struct{}{}
		windows = append(windows, normalized)
	}
	cfg.Windows = windows
	return cfg, nil
}

// NormalizeWindowConfig applies defaults and validates a single window.
func NormalizeWindowConfig(win WindowConfig) (WindowConfig, error) {
	name, err := NormalizeWindowName(string(win.Name))
	if err != nil {
		return WindowConfig{}, fmt.Errorf("window %q: %w", win.Name, err)
	}
	win.Name = name
	if win.Kind == "" {
		if len(win.Tabs) > 0 {
			win.Kind = WindowTabbed
		} else {
			win.Kind = WindowText
		}
	}
	if win.WrapWidth < 0 {
		win.WrapWidth = 0
	}
	if win.WrapWidth == 0 {
		win.WrapWidth = DefaultWrapWidth
	}
	if win.Height <= 0 {
		win.Height = DefaultViewportHeight
	}
	switch win.Kind {
	case WindowText:
		channel := strings.TrimSpace(string(win.Channel))
		if channel == "" {
			channel = string(win.Name)
		}
		id, err := NormalizeChannelID(channel)
		if err != nil {
			return WindowConfig{}, fmt.Errorf("window %q channel %q: %w", win.Name, channel, err)
		}
		win.Channel = id
		if len(win.Tabs) > 0 {
			return WindowConfig{}, fmt.Errorf("window %q: text windows cannot declare tabs", win.Name)
		}
	case WindowTabbed:
		if len(win.Tabs) == 0 {
			return WindowConfig{}, fmt.Errorf("window %q: tabbed windows need at least one tab", win.Name)
		}
		names := make(map[TabName]struct{}, len(win.Tabs))
		tabs := make([]TabConfig, 0, len(win.Tabs))
		for _, tab := range win.Tabs {
			normalized, err := NormalizeTabConfig(tab)
			if err != nil {
				return WindowConfig{}, fmt.Errorf("window %q: %w", win.Name, err)
			}
			if _, ok := names[normalized.Name]; ok {
				return WindowConfig{}, fmt.Errorf("window %q tab %q: %w", win.Name, normalized.Name, ErrDuplicateTab)
			}
			names[normalized.Name] = struct{}{}
			tabs = append(tabs, normalized)
		}
		win.Tabs = tabs
	default:
		return WindowConfig{}, fmt.Errorf("window %q: unsupported kind %q", win.Name, win.Kind)
	}
	return win, nil
}

// NormalizeTabConfig trims names and drops empty stream ids.
func NormalizeTabConfig(tab TabConfig) (TabConfig, error) {
	name, err := NormalizeTabName(string(tab.Name))
	if err != nil {
		return TabConfig{}, fmt.Errorf("tab %q: %w", tab.Name, err)
	}
	tab.Name = name
	streams := make([]ChannelID, 0, len(tab.Streams))
	for _, stream := range tab.Streams {
		stream = ChannelID(strings.TrimSpace(string(stream)))
		if stream == "" {
			continue
		}
		streams = append(streams, stream)
	}
	tab.Streams = streams
	return tab, nil
}
