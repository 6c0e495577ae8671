package config

const (
	defaultAPITarget  = "http://localhost:8000"
	defaultAPITimeout = "5m"
	defaultProfile    = "default"

	defaultMaxHints = 3

	defaultUserID = "demo-user"

	defaultMaterialsDir = "content"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Target:  defaultAPITarget,
			Timeout: defaultAPITimeout,
			Profile: defaultProfile,
		},
		Chat: ChatConfig{
			MaxHints: defaultMaxHints,
		},
		User: UserConfig{
			ID: defaultUserID,
		},
		Materials: MaterialsConfig{
			Dir: defaultMaterialsDir,
		},
	}
}
