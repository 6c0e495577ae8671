package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Config represents the persistent tutor configuration stored as config.toml
// in the .tutor/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	API       APIConfig       `toml:"api"`
	Chat      ChatConfig      `toml:"chat"`
	User      UserConfig      `toml:"user"`
	Storage   StorageConfig   `toml:"storage"`
	Materials MaterialsConfig `toml:"materials"`
}

// APIConfig holds settings for reaching the tutoring backend.
type APIConfig struct {
	// Target is the backend base URL (scheme + host + port).
	Target string `toml:"target,omitempty"`

	// Timeout bounds a whole request, including a streamed chat answer.
	// Stored as a Go duration string, e.g. "5m".
	Timeout string `toml:"timeout,omitempty"`

	// Profile selects the access token in credentials.toml.
	Profile string `toml:"profile,omitempty"`
}

// TimeoutDuration parses Timeout, falling back to the default on error.
func (a APIConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultAPITimeout)
	}
	return d
}

// ChatConfig holds settings for the chat stream and its hint panel.
type ChatConfig struct {
	// FlushTrailing parses data left without a closing blank line when the
	// stream ends instead of dropping it.
	FlushTrailing bool `toml:"flush_trailing,omitempty"`

	// MaxHints caps the hints kept per answer.
	MaxHints uint `toml:"max_hints,omitempty"`
}

// UserConfig identifies the student.
type UserConfig struct {
	ID string `toml:"id,omitempty"`
}

// StorageConfig selects where chat transcripts are kept. Postgres wins over
// SQLite; with neither set transcripts live in memory for one session.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// MaterialsConfig locates the lesson markdown tree.
type MaterialsConfig struct {
	Dir string `toml:"dir,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.target": {
		get: func(c *Config) string { return c.API.Target },
		set: func(c *Config, v string) error {
			u, err := url.Parse(v)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid value for api.target: %q is not an absolute URL", v)
			}
			c.API.Target = v
			return nil
		},
	},
	"api.timeout": {
		get: func(c *Config) string { return c.API.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for api.timeout: %w", err)
			}
			c.API.Timeout = v
			return nil
		},
	},
	"api.profile": {
		get: func(c *Config) string { return c.API.Profile },
		set: func(c *Config, v string) error { c.API.Profile = v; return nil },
	},
	"chat.flush_trailing": {
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.FlushTrailing) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.flush_trailing: %w", err)
			}
			c.Chat.FlushTrailing = b
			return nil
		},
	},
	"chat.max_hints": {
		get: func(c *Config) string {
			if c.Chat.MaxHints == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Chat.MaxHints), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for chat.max_hints: %w", err)
			}
			c.Chat.MaxHints = uint(n)
			return nil
		},
	},
	"user.id": {
		get: func(c *Config) string { return c.User.ID },
		set: func(c *Config, v string) error { c.User.ID = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"materials.dir": {
		get: func(c *Config) string { return c.Materials.Dir },
		set: func(c *Config, v string) error { c.Materials.Dir = v; return nil },
	},
}
