// Package tutorcmder builds the root tutor command.
package tutorcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/wahida/tutor/cmd/tutor/auth"
	chatcmder "github.com/wahida/tutor/cmd/tutor/chat"
	configcmder "github.com/wahida/tutor/cmd/tutor/config"
	historycmder "github.com/wahida/tutor/cmd/tutor/history"
	initcmder "github.com/wahida/tutor/cmd/tutor/init"
	materialscmder "github.com/wahida/tutor/cmd/tutor/materials"
	progresscmder "github.com/wahida/tutor/cmd/tutor/progress"
	quizcmder "github.com/wahida/tutor/cmd/tutor/quiz"
	runcmder "github.com/wahida/tutor/cmd/tutor/run"
	statuscmder "github.com/wahida/tutor/cmd/tutor/status"
	versioncmder "github.com/wahida/tutor/cmd/version"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/logger"
)

const tutorLongDesc string = `Tutor is a terminal client for the tutoring backend.

Ask questions and follow the answer as it streams in, open hints one at a
time, take quizzes, run code in the sandbox and read lesson materials.

Get started:
  tutor init --preset local   Create a .tutor/ directory here
  tutor auth                  Store your access token
  tutor chat                  Start asking questions`

const tutorShortDesc string = "Tutor - streaming tutoring client"

func NewTutorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tutor",
		Short:         tutorShortDesc,
		Long:          tutorLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP(logger.FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().Bool(logger.FlagLogJSON, false, "Write logs as JSON")
	cmd.PersistentFlags().String(config.FlagConfigDir, "", "Override path to the .tutor/ directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(quizcmder.NewQuizCmd())
	cmd.AddCommand(progresscmder.NewProgressCmd())
	cmd.AddCommand(runcmder.NewRunCmd())
	cmd.AddCommand(materialscmder.NewMaterialsCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
