package appconfig

import (
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/chansync/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int            `mapstructure:"config_version" yaml:"config_version"`
	Core          CoreConfig     `mapstructure:"core" yaml:"core"`
	Windows       []WindowConfig `mapstructure:"windows" yaml:"windows"`
	Sources       []SourceConfig `mapstructure:"sources" yaml:"sources"`
	UI            UIConfig       `mapstructure:"ui" yaml:"ui"`
	Logging       LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// CoreConfig controls channel and tab capacities.
type CoreConfig struct {
	DefaultCapacity int            `mapstructure:"default_capacity" yaml:"default_capacity"`
	ChannelCapacity map[string]int `mapstructure:"channel_capacity" yaml:"channel_capacity"`
	TabCapacity     int            `mapstructure:"tab_capacity" yaml:"tab_capacity"`
}

// WindowConfig declares a text or tabbed window.
type WindowConfig struct {
	Name      string      `mapstructure:"name" yaml:"name"`
	Kind      string      `mapstructure:"kind" yaml:"kind"`
	Channel   string      `mapstructure:"channel" yaml:"channel,omitempty"`
	WrapWidth int         `mapstructure:"wrap_width" yaml:"wrap_width,omitempty"`
	Height    int         `mapstructure:"height" yaml:"height,omitempty"`
	Tabs      []TabConfig `mapstructure:"tabs" yaml:"tabs,omitempty"`
}

// TabConfig declares one tab of a tabbed window.
type TabConfig struct {
	Name           string   `mapstructure:"name" yaml:"name"`
	Streams        []string `mapstructure:"streams" yaml:"streams"`
	Timestamps     bool     `mapstructure:"timestamps" yaml:"timestamps"`
	IgnoreActivity bool     `mapstructure:"ignore_activity" yaml:"ignore_activity"`
}

// SourceConfig binds an input to a channel: a file to tail or stdin.
type SourceConfig struct {
	Channel string `mapstructure:"channel" yaml:"channel"`
	Path    string `mapstructure:"path" yaml:"path,omitempty"`
	Stdin   bool   `mapstructure:"stdin" yaml:"stdin,omitempty"`
}

// UIConfig controls the terminal viewer.
type UIConfig struct {
	TickMS       int    `mapstructure:"tick_ms" yaml:"tick_ms"`
	Window       string `mapstructure:"window" yaml:"window"`
	EchoCommands bool   `mapstructure:"echo_commands" yaml:"echo_commands"`
}

// LoggingConfig controls where the viewer writes its log.
type LoggingConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Core: CoreConfig{
			DefaultCapacity: schema.DefaultChannelCapacity,
			ChannelCapacity: map[string]int{},
			TabCapacity:     schema.DefaultTabCapacity,
		},
		Windows: []WindowConfig{
			{
				Name:    "main",
				Kind:    string(schema.WindowText),
				Channel: "main",
			},
			{
				Name: "streams",
				Kind: string(schema.WindowTabbed),
				Tabs: []TabConfig{
					{Name: "All", Streams: []string{"main", "thoughts", "logons", "system"}},
					{Name: "Thoughts", Streams: []string{"thoughts"}, Timestamps: true},
					{Name: "Logons", Streams: []string{"logons"}, IgnoreActivity: true},
				},
			},
		},
		Sources: []SourceConfig{},
		UI: UIConfig{
			TickMS:       50,
			Window:       "main",
			EchoCommands: true,
		},
		Logging: LoggingConfig{
			File: filepath.Join(home, ".chansync", "chansync.log"),
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chansync", "config.yaml"), nil
}

// ToCoreConfig converts the file representation into a normalized core config.
func (c Config) ToCoreConfig() (schema.CoreConfig, error) {
	core := schema.CoreConfig{
		DefaultCapacity: c.Core.DefaultCapacity,
		TabCapacity:     c.Core.TabCapacity,
		ChannelCapacity: make(map[schema.ChannelID]int, len(c.Core.ChannelCapacity)),
	}
	for id, capacity := range c.Core.ChannelCapacity {
		core.ChannelCapacity[schema.ChannelID(id)] = capacity
	}
	for _, win := range c.Windows {
		out := schema.WindowConfig{
			Name:      schema.WindowName(win.Name),
			Kind:      schema.WindowKind(strings.ToLower(strings.TrimSpace(win.Kind))),
			Channel:   schema.ChannelID(win.Channel),
			WrapWidth: win.WrapWidth,
			Height:    win.Height,
		}
		for _, tab := range win.Tabs {
			streams := make([]schema.ChannelID, 0, len(tab.Streams))
			for _, stream := range tab.Streams {
				streams = append(streams, schema.ChannelID(stream))
			}
			out.Tabs = append(out.Tabs, schema.TabConfig{
				Name:           schema.TabName(tab.Name),
				Streams:        streams,
				ShowTimestamps: tab.Timestamps,
				IgnoreActivity: tab.IgnoreActivity,
			})
		}
		core.Windows = append(core.Windows, out)
	}
	return schema.NormalizeCoreConfig(core)
}
