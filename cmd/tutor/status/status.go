// Package statuscmder provides the status command for checking the backend
// connection and the conversation that chat will resume.
package statuscmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/cliui"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/credentials"
	"github.com/wahida/tutor/pkg/dotdir"
	"github.com/wahida/tutor/pkg/logger"
	"github.com/wahida/tutor/pkg/session"
	"github.com/wahida/tutor/pkg/utils"
)

type statusCommander struct {
	apiTarget string
	timeout   string
	profile   string

	cfg       *config.Config
	configDir string
	out       io.Writer
}

const statusLongDesc string = `Show the tutor setup and conversation state.

Prints the config file in use, whether the backend answers its health
check, which access token will be sent and the conversation the next
"tutor chat" will resume.

A backend that cannot be reached is reported but does not fail the
command.

Examples:
  tutor status
  tutor status --api-target http://localhost:8000`

const statusShortDesc string = "Show backend and conversation state"

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ForCommand(cmd, config.FlagAPITarget, config.FlagTimeout, config.FlagProfile)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			cmder.configDir, _ = cmd.Flags().GetString(config.FlagConfigDir)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context(), cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagProfile, &cmder.profile)

	return cmd
}

func (c *statusCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Fprintln(c.out)
	if _, err := os.Stat(cfger.GetTarget()); err == nil {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render(cfger.GetTarget()))
	} else {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render("none, using defaults"))
	}

	if err := c.printBackend(ctx, cmd); err != nil {
		return err
	}
	if err := c.printToken(); err != nil {
		return err
	}
	return c.printConversation()
}

func (c *statusCommander) printBackend(ctx context.Context, cmd *cobra.Command) error {
	api, err := session.NewClient(c.cfg,
		session.WithConfigDir(c.configDir),
		session.WithLogger(logger.FromFlags(cmd.Flags())),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Backend:    "), cliui.NameStyle.Render(api.BaseURL()))

	if err := api.Health(ctx); err != nil {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.FailMark, cliui.ErrorStyle.Render(err.Error()))
		return nil
	}
	fmt.Fprintf(c.out, "  %s %s\n", cliui.SuccessMark, "Backend is healthy")
	return nil
}

func (c *statusCommander) printToken() error {
	profile := c.cfg.API.Profile

	if os.Getenv(credentials.TokenEnvVar) != "" {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Token:      "), cliui.DimStyle.Render("from "+credentials.TokenEnvVar))
		return nil
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	cred, ok, err := mgr.GetToken(profile)
	if err != nil {
		return err
	}

	label := cliui.KeyStyle.Render("Token:      ")
	switch {
	case !ok:
		fmt.Fprintf(c.out, "  %s %s %s\n", label, cliui.NameStyle.Render(profile),
			cliui.WarnStyle.Render("(none stored, run 'tutor auth "+profile+"')"))
	case credentials.NewSource(mgr, profile).Expired():
		fmt.Fprintf(c.out, "  %s %s %s\n", label, cliui.NameStyle.Render(profile), cliui.WarnStyle.Render("(expired)"))
	case !cred.ExpiresAt.IsZero():
		fmt.Fprintf(c.out, "  %s %s %s\n", label, cliui.NameStyle.Render(profile),
			cliui.DimStyle.Render("(expires "+cred.ExpiresAt.Local().Format("2006-01-02")+")"))
	default:
		fmt.Fprintf(c.out, "  %s %s\n", label, cliui.NameStyle.Render(profile))
	}
	return nil
}

func (c *statusCommander) printConversation() error {
	state, err := dotdir.NewManager().LoadConversation(c.configDir)
	if err != nil {
		return fmt.Errorf("loading conversation state: %w", err)
	}

	if state == nil {
		fmt.Fprintf(c.out, "\n  %s No conversation yet. Next chat will start a new one.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Fprintf(c.out, "\n  %s  %s\n", cliui.KeyStyle.Render("Conversation:"), cliui.HashStyle.Render(utils.Truncate(state.ID, 8)))
	fmt.Fprintf(c.out, "  %s  %s\n", cliui.KeyStyle.Render("Started:     "), cliui.DimStyle.Render(state.StartedAt.Local().Format("2006-01-02 15:04")))
	fmt.Fprintf(c.out, "  %s  %s\n\n", cliui.KeyStyle.Render("Questions:   "), cliui.NameStyle.Render(strconv.Itoa(state.Turns)))
	return nil
}
