// Package config loads demo, server and logging settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/df07/go-collision-demos/pkg/log"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Collision modes for the pairwise sphere pass
const (
	CollisionImmediate = "immediate"
	CollisionBatched   = "batched"
)

// Config is the root of a YAML config file
type Config struct {
	Log    LogConfig    `json:"log" yaml:"log"`
	Server ServerConfig `json:"server" yaml:"server"`
	Demo   DemoConfig   `json:"demo" yaml:"demo"`
}

type LogConfig struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

type ServerConfig struct {
	Port     int `json:"port" yaml:"port"`
	MaxTicks int `json:"max_ticks" yaml:"max_ticks"` // Upper bound on ticks per stream
}

// DemoConfig selects and seeds a demo. Zero values mean "use the demo's default".
type DemoConfig struct {
	Name              string `json:"name" yaml:"name"`
	Count             int    `json:"count" yaml:"count"`
	Seed              int64  `json:"seed" yaml:"seed"`
	IntervalMs        int    `json:"interval_ms" yaml:"interval_ms"`
	CollisionMode     string `json:"collision_mode" yaml:"collision_mode"`
	CheckSphereSphere bool   `json:"check_sphere_sphere" yaml:"check_sphere_sphere"`
}

// Interval returns the configured tick interval, or zero for the demo default
func (d DemoConfig) Interval() time.Duration {
	return time.Duration(d.IntervalMs) * time.Millisecond
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Server: ServerConfig{
			Port:     8080,
			MaxTicks: 10000,
		},
		Demo: DemoConfig{
			Name:          "bbox",
			Seed:          1,
			CollisionMode: CollisionImmediate,
		},
	}
}

// Load reads a YAML file on top of the defaults
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := LoadYAML(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadYAML decodes YAML on top of the defaults and validates the result
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: log encoding %q", ErrInvalidConfig, c.Log.Encoding)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.MaxTicks < 0 {
		return fmt.Errorf("%w: server max_ticks %d", ErrInvalidConfig, c.Server.MaxTicks)
	}
	if c.Demo.Count < 0 {
		return fmt.Errorf("%w: demo count %d", ErrInvalidConfig, c.Demo.Count)
	}
	if c.Demo.IntervalMs < 0 {
		return fmt.Errorf("%w: demo interval_ms %d", ErrInvalidConfig, c.Demo.IntervalMs)
	}
	switch c.Demo.CollisionMode {
	case "", CollisionImmediate, CollisionBatched:
	default:
		return fmt.Errorf("%w: collision_mode %q", ErrInvalidConfig, c.Demo.CollisionMode)
	}
	return nil
}

// Logger builds the logger described by the Log section
func (c Config) Logger() (*log.Logger, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.New(log.Options{Level: level, Encoding: c.Log.Encoding})
}
