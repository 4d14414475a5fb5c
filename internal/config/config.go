// Package config resolves tracker settings from defaults, an optional YAML
// file and WINTRACKR_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/wintrackr/internal/normalize"
)

const (
	SamplerX11     = "x11"
	SamplerCommand = "command"
)

type SamplerConfig struct {
	Kind    string   `yaml:"kind"`
	Command []string `yaml:"command"`
}

type Config struct {
	DataDir         string          `yaml:"data_dir"`
	SampleInterval  time.Duration   `yaml:"sample_interval"`
	SummaryInterval time.Duration   `yaml:"summary_interval"`
	SampleTimeout   time.Duration   `yaml:"sample_timeout"`
	History         bool            `yaml:"history"`
	LogLevel        string          `yaml:"log_level"`
	Sampler         SamplerConfig   `yaml:"sampler"`
	Rules           normalize.Rules `yaml:"rules"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := "PC_Activity_Logs"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, "Desktop", "PC_Activity_Logs")
	}
	return Config{
		DataDir:         dataDir,
		SampleInterval:  25 * time.Second,
		SummaryInterval: 60 * time.Second,
		SampleTimeout:   5 * time.Second,
		History:         true,
		LogLevel:        "info",
		Sampler:         SamplerConfig{Kind: SamplerX11},
		Rules:           normalize.DefaultRules(),
	}
}

// DefaultPath returns ~/.config/wintrackr/config.yaml
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "wintrackr", "config.yaml"), nil
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := decode(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	defaults := cfg.Rules
	cfg.Rules = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	cfg.Rules = defaults.Merge(cfg.Rules)
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WINTRACKR_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	applyDurationEnv(&cfg.SampleInterval, "WINTRACKR_SAMPLE_INTERVAL")
	applyDurationEnv(&cfg.SummaryInterval, "WINTRACKR_SUMMARY_INTERVAL")
	applyDurationEnv(&cfg.SampleTimeout, "WINTRACKR_SAMPLE_TIMEOUT")
	if v := os.Getenv("WINTRACKR_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.History = b
		}
	}
	if v := os.Getenv("WINTRACKR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WINTRACKR_SAMPLER_COMMAND"); v != "" {
		cfg.Sampler = SamplerConfig{Kind: SamplerCommand, Command: strings.Fields(v)}
	}
}

func applyDurationEnv(dst *time.Duration, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return
	}
	*dst = d
}

// Validate checks that the configuration can drive a tracker.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample_interval must be positive, got %s", c.SampleInterval)
	}
	if c.SummaryInterval <= 0 {
		return fmt.Errorf("summary_interval must be positive, got %s", c.SummaryInterval)
	}
	if c.SampleTimeout <= 0 {
		return fmt.Errorf("sample_timeout must be positive, got %s", c.SampleTimeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Sampler.Kind {
	case SamplerX11:
	case SamplerCommand:
		if len(c.Sampler.Command) == 0 {
			return fmt.Errorf("sampler.command is required for the command sampler")
		}
	default:
		return fmt.Errorf("unknown sampler kind %q", c.Sampler.Kind)
	}
	for name, rule := range c.Rules {
		switch rule.Pick {
		case "", normalize.SegmentFirst, normalize.SegmentLast:
		default:
			return fmt.Errorf("rule %q: pick must be %q or %q", name, normalize.SegmentFirst, normalize.SegmentLast)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// LogDir holds the daily activity CSV files.
func (c Config) LogDir() string {
	return filepath.Join(c.DataDir, "DailyActivityLogs")
}

// SummaryDir holds the daily usage snapshots.
func (c Config) SummaryDir() string {
	return filepath.Join(c.DataDir, "DailyUsage")
}
