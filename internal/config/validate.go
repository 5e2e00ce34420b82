package config

import (
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// ParseClock parses a "HH:MM" 24h time-of-day string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("schedule time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.Errorf("schedule time %q: bad hour", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.Errorf("schedule time %q: bad minute", s)
	}
	return hour, minute, nil
}

// Validate checks the configuration for structural errors. It does not
// touch the filesystem: missing directories degrade at runtime instead
// of failing startup.
func (c *Config) Validate() error {
	for i, wp := range c.WatchedDirectories {
		if wp.Path == "" {
			return errors.Errorf("watchedDirectories[%d]: empty path", i)
		}
	}

	for i, r := range c.Rules {
		if r.Name == "" {
			return errors.Errorf("organizationRules[%d]: missing name", i)
		}
		if r.Destination == "" {
			return errors.Errorf("rule %q: missing destination", r.Name)
		}
		if len(r.Extensions) == 0 && len(r.NamePatterns) == 0 {
			return errors.Errorf("rule %q: needs extensions or namePatterns", r.Name)
		}
		for _, p := range r.NamePatterns {
			if !doublestar.ValidatePattern(p) {
				return errors.Errorf("rule %q: bad pattern %q", r.Name, p)
			}
		}
	}

	for i, t := range c.BackupTargets {
		if t.Name == "" {
			return errors.Errorf("backupTargets[%d]: missing name", i)
		}
		if len(t.Sources) == 0 {
			return errors.Errorf("backup target %q: no sources", t.Name)
		}
		if t.Destination == "" {
			return errors.Errorf("backup target %q: missing destination", t.Name)
		}
		if _, _, err := ParseClock(t.ScheduleTime); err != nil {
			return errors.Errorf("backup target %q: %w", t.Name, err)
		}
		if t.Mode != "full" && t.Mode != "incremental" {
			return errors.Errorf("backup target %q: unknown mode %q", t.Name, t.Mode)
		}
		if t.RetentionDays < 0 {
			return errors.Errorf("backup target %q: negative retentionDays", t.Name)
		}
	}

	switch c.Watch.Mode {
	case "auto", "poll", "fsnotify":
	default:
		return errors.Errorf("watch: unknown mode %q", c.Watch.Mode)
	}

	switch c.Organize.DuplicatePolicy {
	case "delete", "keep":
	default:
		return errors.Errorf("organize: unknown duplicatePolicy %q", c.Organize.DuplicatePolicy)
	}

	return nil
}
