// Package config loads sip settings from <data dir>/config.yaml (or the
// file named by SIP_CONFIG), overridden by SIP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const (
	configFile = "config.yaml"
	dbFile     = "sip.db"

	// EnvConfigPath names an explicit config file
	EnvConfigPath = "SIP_CONFIG"
	// EnvDataDir overrides the data directory
	EnvDataDir = "SIP_DATA_DIR"
)

// LogConfig controls the slog handler
type LogConfig struct {
	Level  string `yaml:"level,omitempty" env:"SIP_LOG_LEVEL" env-default:"warn"`
	Format string `yaml:"format,omitempty" env:"SIP_LOG_FORMAT" env-default:"text"`
}

// NotifyConfig controls the local notification platform.
// Zero values fall back to env-default, so the off switch is Quiet.
type NotifyConfig struct {
	Quiet         bool          `yaml:"quiet,omitempty" env:"SIP_NOTIFY_QUIET"`
	RatePerMinute int           `yaml:"rate_per_minute,omitempty" env:"SIP_NOTIFY_RATE" env-default:"30"`
	Burst         int           `yaml:"burst,omitempty" env:"SIP_NOTIFY_BURST" env-default:"5"`
	Interval      time.Duration `yaml:"interval,omitempty" env:"SIP_NOTIFY_INTERVAL" env-default:"30s"`
}

// Config is the full sip configuration
type Config struct {
	DataDir  string       `yaml:"-"`
	DBPath   string       `yaml:"db_path,omitempty" env:"SIP_DB_PATH"`
	Timezone string       `yaml:"timezone,omitempty" env:"SIP_TIMEZONE" env-default:"Local"`
	Log      LogConfig    `yaml:"log,omitempty"`
	Notify   NotifyConfig `yaml:"notify,omitempty"`
}

// DefaultDataDir returns $SIP_DATA_DIR or ~/.sip
func DefaultDataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sip"
	}
	return filepath.Join(home, ".sip")
}

// Path returns the config file location for dataDir
func Path(dataDir string) string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(dataDir, configFile)
}

// Load reads the config for dataDir.
// Priority: env > yaml > defaults (env-default tags).
// A missing file is fine unless SIP_CONFIG named it explicitly.
func Load(dataDir string) (*Config, error) {
	var cfg Config

	path := Path(dataDir)
	explicit := os.Getenv(EnvConfigPath) != ""

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	cfg.DataDir = dataDir
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dataDir, dbFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks enum and range fields
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Notify.RatePerMinute <= 0 {
		errs = append(errs, fmt.Errorf("notify.rate_per_minute must be positive, got %d", c.Notify.RatePerMinute))
	}
	if c.Notify.Burst <= 0 {
		errs = append(errs, fmt.Errorf("notify.burst must be positive, got %d", c.Notify.Burst))
	}
	if c.Notify.Interval < time.Second {
		errs = append(errs, fmt.Errorf("notify.interval must be at least 1s, got %s", c.Notify.Interval))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone ("Local", "UTC" or an IANA name)
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// loadFile reads only the file layer, without env overrides or defaults
func loadFile(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to the config file using atomic write (temp file + rename)
func Save(dataDir string, cfg *Config) error {
	path := Path(dataDir)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.yaml.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

// setters maps settable keys to field updates
var setters = map[string]func(c *Config, v string) error{
	"db_path":  func(c *Config, v string) error { c.DBPath = v; return nil },
	"timezone": func(c *Config, v string) error { c.Timezone = v; return nil },
	"log.level": func(c *Config, v string) error {
		c.Log.Level = v
		return nil
	},
	"log.format": func(c *Config, v string) error {
		c.Log.Format = v
		return nil
	},
	"notify.quiet": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Notify.Quiet = b
		return nil
	},
	"notify.rate_per_minute": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Notify.RatePerMinute = n
		return nil
	},
	"notify.burst": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Notify.Burst = n
		return nil
	},
	"notify.interval": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Notify.Interval = d
		return nil
	},
}

// Keys lists the keys accepted by Set
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set updates one key in the config file. Environment overrides are not
// written back. If the result does not validate the previous file is restored.
func Set(dataDir, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}

	path := Path(dataDir)
	previous, readErr := os.ReadFile(path)
	cfg, err := loadFile(path)
	if err != nil {
		return err
	}
	if err := set(cfg, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := Save(dataDir, cfg); err != nil {
		return err
	}
	if _, err := Load(dataDir); err != nil {
		if readErr == nil {
			os.WriteFile(path, previous, 0644)
		} else {
			os.Remove(path)
		}
		return err
	}
	return nil
}
