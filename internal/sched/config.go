package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors uvsched.yml.
type Config struct {
	BatchSize       int       `yaml:"batch_size"`        // 8 (by default)
	MaxTasks        int       `yaml:"max_tasks"`         // 8192 (by default)
	ReadySet        string    `yaml:"ready_set"`         // "list" or "tree"
	StatsIntervalMS int       `yaml:"stats_interval_ms"` // 1000 (by default)
	Partial         bool      `yaml:"partial"`           // only claim tasks already on the policy
	LockMemory      bool      `yaml:"lock_memory"`       // mlockall at bootstrap
	SchedClass      bool      `yaml:"sched_class"`       // move self onto the ext scheduling class
	Log             LogConfig `yaml:"log"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	Level    string         `yaml:"level"`  // debug, info, warn, error
	Format   string         `yaml:"format"` // console or json
	Output   string         `yaml:"output"` // stderr, stdout, or a file path
	Rotation RotationConfig `yaml:"rotation"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool `yaml:"enable"`
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// If the config file is not found, we use default values
func defaultConfig() Config {
	return Config{
		BatchSize:       8,
		MaxTasks:        8192,
		ReadySet:        "list",
		StatsIntervalMS: 1000,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 8
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = 8192
	}
	if cfg.ReadySet != "list" && cfg.ReadySet != "tree" {
		cfg.ReadySet = "list"
	}
	if cfg.StatsIntervalMS <= 0 {
		cfg.StatsIntervalMS = 1000
	}

	return cfg
}
