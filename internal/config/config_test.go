package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv isolates a test from SIP_* variables in the caller's environment
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "SIP_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v, want warn/text", cfg.Log)
	}
	if cfg.DBPath != filepath.Join(dir, "sip.db") {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
	if cfg.Notify.Quiet || cfg.Notify.RatePerMinute != 30 || cfg.Notify.Burst != 5 {
		t.Errorf("notify = %+v", cfg.Notify)
	}
	if cfg.Notify.Interval != 30*time.Second {
		t.Errorf("interval = %s, want 30s", cfg.Notify.Interval)
	}
	if loc, err := cfg.Location(); err != nil || loc != time.Local {
		t.Errorf("Location = %v, %v", loc, err)
	}
}

func TestLoadFileAndEnvPriority(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := "timezone: UTC\nlog:\n  level: debug\nnotify:\n  interval: 1m\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("SIP_LOG_LEVEL", "error")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("env should win over yaml: level = %s", cfg.Log.Level)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %s, want UTC", cfg.Timezone)
	}
	if cfg.Notify.Interval != time.Minute {
		t.Errorf("Interval = %s, want 1m", cfg.Notify.Interval)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Timezone: "UTC",
		Log:      LogConfig{Level: "info", Format: "json"},
		Notify:   NotifyConfig{RatePerMinute: 1, Burst: 1, Interval: time.Second},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"rate", func(c *Config) { c.Notify.RatePerMinute = 0 }},
		{"burst", func(c *Config) { c.Notify.Burst = -1 }},
		{"interval", func(c *Config) { c.Notify.Interval = time.Millisecond }},
	}
	for _, tc := range tests {
		cfg := valid
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSet(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if err := Set(dir, "log.level", "debug"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := Set(dir, "notify.quiet", "true"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" || !cfg.Notify.Quiet {
		t.Errorf("cfg = %+v", cfg)
	}

	if err := Set(dir, "log.level", "shouting"); err == nil {
		t.Error("expected invalid value to be rejected")
	}
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("config left invalid after rejected Set: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %s, want debug restored", cfg.Log.Level)
	}

	if err := Set(dir, "colour", "blue"); err == nil {
		t.Error("expected unknown key error")
	}
	if err := Set(dir, "notify.burst", "many"); err == nil {
		t.Error("expected parse error")
	}
}
