// Package initcmder provides the init command for initializing a local .tutor
// directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/cliui"
	"github.com/wahida/tutor/pkg/config"
)

const (
	dirName = ".tutor"
)

const initLongDesc string = `Initialize a new .tutor/ directory in the current working directory.

Creates a local .tutor/ directory that takes precedence over the default
~/.tutor/ directory for configuration, credentials, transcripts and the
conversation state.

A config.toml is written from a preset:
  local       Defaults, with transcripts kept in .tutor/tutor.sqlite
  classroom   A shared school backend, the classroom token profile,
              more hints per answer and no transcripts on disk

Without --preset an existing config.toml is left alone and a new one gets
the defaults.

Examples:
  tutor init
  tutor init --preset local
  tutor init --preset classroom`

const initShortDesc string = "Initialize a local .tutor/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString(config.FlagConfigDir)
			return runInit(cmd.OutOrStdout(), configDir, preset)
		},
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Config preset to write (local, classroom)")
	_ = cmd.RegisterFlagCompletionFunc("preset", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.ValidPresetNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInit(out io.Writer, configDir, preset string) error {
	var cfg *config.Config
	if preset != "" {
		var err error
		cfg, err = config.PresetConfig(preset)
		if err != nil {
			return err
		}
	}

	dir := configDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	info, err := os.Stat(dir)
	existed := err == nil && info.IsDir()
	if !existed {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .tutor directory: %w", err)
		}
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, statErr := os.Stat(cfger.GetTarget())
	hasConfig := statErr == nil
	if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("reading config: %w", statErr)
	}

	if cfg == nil {
		if hasConfig {
			fmt.Fprintf(out, "Already initialized: %s\n", dir)
			return nil
		}
		cfg = config.NewDefaultConfig()
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	if existed {
		fmt.Fprintf(out, "%s Updated %s\n", cliui.SuccessMark, cfger.GetTarget())
	} else {
		fmt.Fprintf(out, "%s Initialized .tutor directory: %s\n", cliui.SuccessMark, dir)
	}
	if preset != "" {
		fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("Using the "+preset+" preset."))
	}
	return nil
}
