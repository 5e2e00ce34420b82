package config

import "time"

type Config struct {
	WatchedDirectories []WatchedPath  `yaml:"watchedDirectories"`
	Rules              []Rule         `yaml:"organizationRules"`
	BackupTargets      []BackupTarget `yaml:"backupTargets"`
	Watch              WatchConfig    `yaml:"watch"`
	Organize           OrganizeConfig `yaml:"organize"`
	Logging            LoggingConfig  `yaml:"logging"`
}

// WatchedPath is one directory monitored for new files.
type WatchedPath struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// Rule maps files to a destination directory. Rules are evaluated in the
// order they appear in the config; the first enabled match wins.
type Rule struct {
	Name         string   `yaml:"name"`
	Extensions   []string `yaml:"extensions"`   // e.g. [".pdf", ".docx"]
	NamePatterns []string `yaml:"namePatterns"` // glob patterns matched against the base name
	Destination  string   `yaml:"destination"`
	Enabled      bool     `yaml:"enabled"`
}

type WatchConfig struct {
	Mode          string        `yaml:"mode"`          // "auto", "poll", "fsnotify"
	PollInterval  time.Duration `yaml:"pollInterval"`  // e.g. 5s
	QuietPeriod   time.Duration `yaml:"quietPeriod"`   // size must hold this long before dispatch
	SweepInterval time.Duration `yaml:"sweepInterval"` // how often pending files are re-sampled
	MaxPendingAge time.Duration `yaml:"maxPendingAge"` // entries older than this are evicted
}

type OrganizeConfig struct {
	DuplicatePolicy string `yaml:"duplicatePolicy"` // "delete", "keep"
}

// BackupTarget describes one scheduled backup job.
type BackupTarget struct {
	Name          string   `yaml:"name"`
	Sources       []string `yaml:"sources"`
	Destination   string   `yaml:"destination"`
	ScheduleTime  string   `yaml:"scheduleTime"` // "HH:MM", 24h clock
	Mode          string   `yaml:"mode"`         // "full", "incremental"
	RetentionDays int      `yaml:"retentionDays"` // 0 keeps everything
	Enabled       bool     `yaml:"enabled"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`  // "info", "debug", etc.
	Format     string `yaml:"format"` // "json", "console"
	File       string `yaml:"file"`   // empty disables file output
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

func (c *Config) applyDefaults() {
	if c.Watch.Mode == "" {
		c.Watch.Mode = "auto"
	}
	if c.Watch.PollInterval <= 0 {
		c.Watch.PollInterval = 5 * time.Second
	}
	if c.Watch.QuietPeriod <= 0 {
		c.Watch.QuietPeriod = 2 * time.Second
	}
	if c.Watch.SweepInterval <= 0 {
		c.Watch.SweepInterval = 500 * time.Millisecond
	}
	if c.Watch.MaxPendingAge <= 0 {
		c.Watch.MaxPendingAge = 10 * time.Minute
	}
	if c.Organize.DuplicatePolicy == "" {
		c.Organize.DuplicatePolicy = "delete"
	}
	for i := range c.BackupTargets {
		if c.BackupTargets[i].Mode == "" {
			c.BackupTargets[i].Mode = "incremental"
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 5
	}
}
