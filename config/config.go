// Package config loads application settings with viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FZ5_SIM_TICK_RATE.
const EnvPrefix = "FZ5"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// SimConfig controls the fixed-step simulation.
type SimConfig struct {
	TickRate     int  `mapstructure:"tick_rate"`
	AsyncSlicing bool `mapstructure:"async_slicing"`
}

// Step is the fixed step in seconds.
func (s SimConfig) Step() float64 {
	if s.TickRate <= 0 {
		return 0
	}
	return 1 / float64(s.TickRate)
}

type PrefabsConfig struct {
	// Dir holds disk overrides of the embedded prefabs.
	Dir    string `mapstructure:"dir"`
	Watch  bool   `mapstructure:"watch"`
	// Player overrides the arena's spawn prefab.
	Player string `mapstructure:"player"`
	Arena  string `mapstructure:"arena"`
}

// ScriptConfig selects a tengo script to drive the player. An empty path
// leaves the player on the keyboard.
type ScriptConfig struct {
	Path   string `mapstructure:"path"`
	Frames int    `mapstructure:"frames"`
}

type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Window  WindowConfig  `mapstructure:"window"`
	Sim     SimConfig     `mapstructure:"sim"`
	Prefabs PrefabsConfig `mapstructure:"prefabs"`
	Script  ScriptConfig  `mapstructure:"script"`
}

// Validate reports every violation at once.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Sprintf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Sim.TickRate < 1 || c.Sim.TickRate > 1000 {
		errs = append(errs, fmt.Sprintf("sim.tick_rate must be 1-1000, got %d", c.Sim.TickRate))
	}
	if c.Prefabs.Arena == "" {
		errs = append(errs, "prefabs.arena must not be empty")
	}
	if c.Script.Frames < 0 {
		errs = append(errs, fmt.Sprintf("script.frames must be >= 0, got %d", c.Script.Frames))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads path when given, applies FZ5_ environment overrides on top of
// the defaults, and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already configured viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.title", "fz5")

	v.SetDefault("sim.tick_rate", 60)
	v.SetDefault("sim.async_slicing", true)

	v.SetDefault("prefabs.dir", "prefabs")
	v.SetDefault("prefabs.watch", false)
	v.SetDefault("prefabs.player", "")
	v.SetDefault("prefabs.arena", "arena.yaml")

	v.SetDefault("script.path", "")
	v.SetDefault("script.frames", 600)
}
