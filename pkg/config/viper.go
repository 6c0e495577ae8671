package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/wahida/tutor/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable tutor reads.
const EnvPrefix = "TUTOR"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the TUTOR_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (TUTOR_API_TARGET, TUTOR_USER_ID, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: TUTOR_API_TARGET, TUTOR_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper builds a Config from the merged view held by v. Values that
// fail to parse fall back to their defaults.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		API: APIConfig{
			Target:  v.GetString("api.target"),
			Timeout: v.GetString("api.timeout"),
			Profile: v.GetString("api.profile"),
		},
		Chat: ChatConfig{
			FlushTrailing: v.GetBool("chat.flush_trailing"),
			MaxHints:      v.GetUint("chat.max_hints"),
		},
		User: UserConfig{
			ID: v.GetString("user.id"),
		},
		Storage: StorageConfig{
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Materials: MaterialsConfig{
			Dir: v.GetString("materials.dir"),
		},
	}

	applyDefaults(cfg)
	return cfg
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// API
	v.SetDefault("api.target", d.API.Target)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.profile", d.API.Profile)

	// Chat
	v.SetDefault("chat.flush_trailing", d.Chat.FlushTrailing)
	v.SetDefault("chat.max_hints", d.Chat.MaxHints)

	// User
	v.SetDefault("user.id", d.User.ID)

	// Storage
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Materials
	v.SetDefault("materials.dir", d.Materials.Dir)
}
