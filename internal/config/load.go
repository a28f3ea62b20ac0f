package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid configuration")

// Config is the runtime configuration of one instance.
type Config struct {
	LogLevel  string          `mapstructure:"logLevel"`
	LogFormat string          `mapstructure:"logFormat"`
	Window    WindowConfig    `mapstructure:"window"`
	Store     StoreConfig     `mapstructure:"store"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Marker    MarkerConfig    `mapstructure:"marker"`
	UI        UIConfig        `mapstructure:"ui"`
	Audio     AudioConfig     `mapstructure:"audio"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// StoreConfig holds the shared key-value store settings
type StoreConfig struct {
	Path         string        `mapstructure:"path"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
}

type BroadcastConfig struct {
	Key      string        `mapstructure:"key"`
	Interval time.Duration `mapstructure:"interval"`
}

type MarkerConfig struct {
	Radius float64 `mapstructure:"radius"`
	Color  string  `mapstructure:"color"`
}

type UIConfig struct {
	Overlay     bool `mapstructure:"overlay"`
	ErrorDialog bool `mapstructure:"errorDialog"`
}

type AudioConfig struct {
	Chime bool `mapstructure:"chime"`
}

// SetDefaults registers default values for every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "console")

	v.SetDefault("window.width", WindowWidth)
	v.SetDefault("window.height", WindowHeight)
	v.SetDefault("window.title", WindowTitle)

	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.pollInterval", StorePollInterval)

	v.SetDefault("broadcast.key", BroadcastKey)
	v.SetDefault("broadcast.interval", BroadcastInterval)

	v.SetDefault("marker.radius", MarkerRadius)
	v.SetDefault("marker.color", MarkerColor)

	v.SetDefault("ui.overlay", false)
	v.SetDefault("ui.errorDialog", true)
	v.SetDefault("audio.chime", false)
}

// Load reads configuration from v, an optional config file and the
// WINDOWSYNC_ environment. An empty configFile skips the file.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("WINDOWSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Store.Path == "":
		return fmt.Errorf("%w: store.path is empty", ErrInvalid)
	case c.Store.PollInterval <= 0:
		return fmt.Errorf("%w: store.pollInterval must be positive", ErrInvalid)
	case c.Broadcast.Key == "":
		return fmt.Errorf("%w: broadcast.key is empty", ErrInvalid)
	case c.Broadcast.Interval <= 0:
		return fmt.Errorf("%w: broadcast.interval must be positive", ErrInvalid)
	case c.Marker.Radius < 0:
		return fmt.Errorf("%w: marker.radius must not be negative", ErrInvalid)
	}
	if _, err := colorful.Hex(c.Marker.Color); err != nil {
		return fmt.Errorf("%w: marker.color %q: %v", ErrInvalid, c.Marker.Color, err)
	}
	return nil
}

// DefaultStorePath returns the shared store file under the user cache dir,
// falling back to the temp dir when no cache dir is known.
func DefaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "windowsync", "sync.db")
}
