package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/dotdir"
)

// FlagConfigDir is the persistent root flag overriding .tutor/ resolution.
const FlagConfigDir = "config-dir"

// ForCommand resolves the effective configuration for cmd: defaults, then
// config.toml from the --config-dir (or dotdir) location, then TUTOR_*
// environment variables, then the registered flags named by keys.
//
// A relative storage.sqlite_path is resolved against the .tutor/ directory.
func ForCommand(cmd *cobra.Command, keys ...string) (*Config, error) {
	configDir, _ := cmd.Flags().GetString(FlagConfigDir)

	v, err := InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	BindRegisteredFlags(v, cmd, Flags, keys)
	cfg := FromViper(v)

	if p := cfg.Storage.SQLitePath; p != "" && p != ":memory:" && !filepath.IsAbs(p) {
		target, err := dotdir.NewManager().Target(configDir)
		if err != nil {
			return nil, fmt.Errorf("resolving config dir: %w", err)
		}
		cfg.Storage.SQLitePath = filepath.Join(target, p)
	}

	return cfg, nil
}
