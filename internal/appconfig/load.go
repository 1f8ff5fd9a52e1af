package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"pkt.systems/chansync/schema"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	defaults, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("core.default_capacity", defaults.Core.DefaultCapacity)
	v.SetDefault("core.channel_capacity", defaults.Core.ChannelCapacity)
	v.SetDefault("core.tab_capacity", defaults.Core.TabCapacity)
	v.SetDefault("ui.tick_ms", defaults.UI.TickMS)
	v.SetDefault("ui.echo_commands", defaults.UI.EchoCommands)
	v.SetDefault("logging.file", defaults.Logging.File)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	// Lists are decoded into empty slices: viper merges a list default with
	// the file's list element by element.
	cfg := Config{ConfigVersion: CurrentConfigVersion}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if !v.InConfig("windows") {
		cfg.Windows = defaults.Windows
		if !v.InConfig("ui.window") {
			cfg.UI.Window = defaults.UI.Window
		}
	}
	if cfg.Sources == nil {
		cfg.Sources = []SourceConfig{}
	}
	expandConfigEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks a loaded or hand-edited config.
func Validate(cfg Config) error {
	if len(cfg.Windows) == 0 {
		return fmt.Errorf("windows: at least one window is required")
	}
	core, err := cfg.ToCoreConfig()
	if err != nil {
		return fmt.Errorf("windows: %w", err)
	}
	for i, win := range core.Windows {
		if win.Kind == schema.WindowText {
			if err := checkLowercase(fmt.Sprintf("windows[%d].channel", i), string(win.Channel)); err != nil {
				return err
			}
		}
		for j, tab := range win.Tabs {
			for _, stream := range tab.Streams {
				if err := checkLowercase(fmt.Sprintf("windows[%d].tabs[%d].streams", i, j), string(stream)); err != nil {
					return err
				}
			}
		}
	}
	if cfg.UI.TickMS <= 0 {
		return fmt.Errorf("ui.tick_ms must be positive")
	}
	if cfg.UI.Window != "" {
		found := false
		for _, win := range core.Windows {
			if string(win.Name) == cfg.UI.Window {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("ui.window %q: %w", cfg.UI.Window, schema.ErrWindowNotFound)
		}
	}
	stdin := 0
	for i, src := range cfg.Sources {
		if _, err := schema.NormalizeChannelID(src.Channel); err != nil {
			return fmt.Errorf("sources[%d].channel %q: %w", i, src.Channel, err)
		}
		if err := checkLowercase(fmt.Sprintf("sources[%d].channel", i), strings.TrimSpace(src.Channel)); err != nil {
			return err
		}
		hasPath := strings.TrimSpace(src.Path) != ""
		if hasPath == src.Stdin {
			return fmt.Errorf("sources[%d]: exactly one of path or stdin is required", i)
		}
		if src.Stdin {
			stdin++
		}
	}
	if stdin > 1 {
		return fmt.Errorf("sources: stdin can feed only one channel")
	}
	return nil
}

// checkLowercase rejects mixed-case channel ids. Viper lowercases the keys of
// core.channel_capacity, so such an id could never match its override.
func checkLowercase(key, id string) error {
	if id != strings.ToLower(id) {
		return fmt.Errorf("%s %q: channel ids must be lowercase: %w", key, id, schema.ErrInvalidName)
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Logging.File = expandEnv(cfg.Logging.File)
	for i := range cfg.Sources {
		cfg.Sources[i].Path = expandEnv(cfg.Sources[i].Path)
	}
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
