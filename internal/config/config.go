// Package config handles TOML configuration loading with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/setevik/rfkpi/internal/kpi"
)

// Config is the top-level configuration for rfkpi.
type Config struct {
	Instance   InstanceConfig   `toml:"instance"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Store      StoreConfig      `toml:"store"`
	Log        LogConfig        `toml:"log"`
}

// InstanceConfig identifies the analyzing bench/host.
type InstanceConfig struct {
	ID   string `toml:"id"`
	Role string `toml:"role"`
}

// ThresholdsConfig holds the KPI acceptance thresholds.
type ThresholdsConfig struct {
	RSRPMin                int     `toml:"rsrp_min"`
	RSRQMin                int     `toml:"rsrq_min"`
	SINRMin                int     `toml:"sinr_min"`
	CallSetupMaxMS         int64   `toml:"call_setup_max_ms"`
	HandoverDurationMaxMS  int64   `toml:"handover_duration_max_ms"`
	HandoverSuccessRateMin float64 `toml:"handover_success_rate_min"`
	MaxViolationRatio      float64 `toml:"max_violation_ratio"`
}

// KPI converts the configured thresholds to the evaluation record.
func (t ThresholdsConfig) KPI() kpi.Thresholds {
	return kpi.Thresholds{
		RSRPMin:                t.RSRPMin,
		RSRQMin:                t.RSRQMin,
		SINRMin:                t.SINRMin,
		CallSetupMaxMS:         t.CallSetupMaxMS,
		HandoverDurationMaxMS:  t.HandoverDurationMaxMS,
		HandoverSuccessRateMin: t.HandoverSuccessRateMin,
		MaxViolationRatio:      t.MaxViolationRatio,
	}
}

// StoreConfig controls the run history database.
type StoreConfig struct {
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps time.Duration for TOML string parsing (e.g. "5m", "720h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a Config with sensible defaults. Threshold defaults
// follow the standard 3GPP-derived acceptance values.
func Default() *Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	t := kpi.DefaultThresholds()
	return &Config{
		Instance: InstanceConfig{
			ID:   hostname,
			Role: "bench",
		},
		Thresholds: ThresholdsConfig{
			RSRPMin:                t.RSRPMin,
			RSRQMin:                t.RSRQMin,
			SINRMin:                t.SINRMin,
			CallSetupMaxMS:         t.CallSetupMaxMS,
			HandoverDurationMaxMS:  t.HandoverDurationMaxMS,
			HandoverSuccessRateMin: t.HandoverSuccessRateMin,
			MaxViolationRatio:      t.MaxViolationRatio,
		},
		Store: StoreConfig{
			Retention: Duration{90 * 24 * time.Hour},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "rfkpi", "config.toml")
}

// DBPath returns the run database path, falling back to the default data
// directory when unset.
func (c *Config) DBPath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "rfkpi", "runs.db")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
