// Package configcmder provides the config command for managing persistent
// tutor configuration stored in the .tutor/ directory.
package configcmder

import (
	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/config"
)

const configLongDesc string = `Manage persistent tutor configuration.

Configuration is stored as config.toml in the .tutor/ directory and provides
default values for command flags. CLI flags and TUTOR_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  api.target, api.timeout, api.profile,
  chat.flush_trailing, chat.max_hints,
  user.id,
  storage.sqlite_path, storage.postgres_dsn,
  materials.dir

Use subcommands to get, set, or list configuration values:
  tutor config set <key> <value>    Set a configuration value
  tutor config get <key>            Get a configuration value
  tutor config list                 List all configuration values

Examples:
  tutor config set api.target http://localhost:8000
  tutor config set chat.max_hints 5
  tutor config get user.id
  tutor config list`

const configShortDesc string = "Manage persistent tutor configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// completeKeys offers config keys for the first argument.
func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
