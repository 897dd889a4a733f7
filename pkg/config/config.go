// Package config loads the YAML configuration for the infograph CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	File     string         `yaml:"-"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Queue    QueueConfig    `yaml:"queue"`
}

// DatabaseConfig configures the SQLite record store.
type DatabaseConfig struct {
	// Path is the database file. Empty selects the OS-specific default.
	Path string `yaml:"path"`
	WAL  bool   `yaml:"wal"`
	Sync string `yaml:"sync" default:"FULL"`
}

// LogConfig configures zap.
type LogConfig struct {
	// Mode is "development" (console) or "production" (JSON).
	Mode  string `yaml:"mode" default:"development"`
	Level string `yaml:"level" default:"warn"`
}

// FetchConfig configures the transcript and page fetchers.
type FetchConfig struct {
	Timeout            time.Duration `yaml:"timeout" default:"20s"`
	UserAgent          string        `yaml:"user_agent" default:"infograph/0.1 (+https://github.com/unowned-ai/infograph)"`
	TranscriptLang     string        `yaml:"transcript_lang" default:"en"`
	TranscriptEndpoint string        `yaml:"transcript_endpoint" default:"https://www.youtube.com/api/timedtext"`
}

// QueueConfig configures the per-notebook write queue.
type QueueConfig struct {
	Capacity    int           `yaml:"capacity" default:"100"`
	IdleTimeout time.Duration `yaml:"idle_timeout" default:"10m"`
	// WriteTimeout bounds a single queued mutation. Zero waits indefinitely.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Default returns a Config with every default applied.
func Default() (*Config, error) {
	c := new(Config)
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("set default config failed: %w", err)
	}
	return c, nil
}

// Load reads the YAML file at path on top of the defaults. A missing file is
// not an error when optional is true; the defaults are returned instead.
func Load(path string, optional bool) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}

	realpath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	c.File = filepath.Clean(realpath)

	data, err := os.ReadFile(c.File)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read config file failed: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}

	// Fill fields that are present in the YAML but left empty.
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("re-set default config failed: %w", err)
	}

	return c, nil
}

// Save writes the configuration back to c.File.
func (c *Config) Save() error {
	if c.File == "" {
		return errors.New("config has no file path")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.File), 0755); err != nil {
		return fmt.Errorf("create config directory failed: %w", err)
	}
	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return fmt.Errorf("write config file failed: %w", err)
	}
	return nil
}
