// Package progresscmder provides the progress command showing a student's
// streak and badges.
package progresscmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/cliui"
	"github.com/wahida/tutor/pkg/client"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/logger"
	"github.com/wahida/tutor/pkg/session"
)

type progressCommander struct {
	apiTarget string
	timeout   string
	profile   string
	user      string

	cfg *config.Config
}

const progressLongDesc string = `Show learning progress.

Prints the streak, badges and last active day for a student. The student
defaults to user.id from the config; pass a user ID to look up someone
else.

Examples:
  tutor progress
  tutor progress student-42
  tutor config set user.id student-42`

const progressShortDesc string = "Show streak and badges"

func NewProgressCmd() *cobra.Command {
	cmder := &progressCommander{}

	cmd := &cobra.Command{
		Use:   "progress [user]",
		Short: progressShortDesc,
		Long:  progressLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ForCommand(cmd, config.FlagAPITarget, config.FlagTimeout, config.FlagProfile, config.FlagUser)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			user := cmder.cfg.User.ID
			// An explicit --user wins even when empty; the config layer
			// would otherwise backfill the default student.
			if cmd.Flags().Changed(config.FlagUser) {
				user = cmder.user
			}
			if len(args) == 1 {
				user = args[0]
			}
			if strings.TrimSpace(user) == "" {
				return errors.New("no student given: pass a user ID or set user.id")
			}

			configDir, _ := cmd.Flags().GetString(config.FlagConfigDir)
			c, err := session.NewClient(cmder.cfg,
				session.WithConfigDir(configDir),
				session.WithLogger(logger.FromFlags(cmd.Flags())),
			)
			if err != nil {
				return err
			}

			return runProgress(cmd.Context(), c, user, cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagProfile, &cmder.profile)
	config.AddStringFlag(cmd, config.Flags, config.FlagUser, &cmder.user)

	return cmd
}

func runProgress(ctx context.Context, c *client.Client, user string, out io.Writer) error {
	p, err := c.GetProgress(ctx, user)
	if err != nil {
		return fmt.Errorf("fetching progress: %w", err)
	}

	fmt.Fprintf(out, "\n  %s %s\n\n", cliui.KeyStyle.Render("Student:"), cliui.NameStyle.Render(p.UserID))
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Streak:"), cliui.ValueStyle.Render(streak(p.StreakDays)))

	if day, err := p.LastActiveDate(); err == nil {
		fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Last active:"), day.Format("Mon, 02 Jan 2006"))
	} else if p.LastActive != "" {
		fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Last active:"), p.LastActive)
	}

	if len(p.Badges) == 0 {
		fmt.Fprintf(out, "  %s %s\n\n", cliui.KeyStyle.Render("Badges:"), cliui.DimStyle.Render("none yet"))
		return nil
	}

	fmt.Fprintf(out, "  %s\n", cliui.KeyStyle.Render("Badges:"))
	for _, b := range p.Badges {
		fmt.Fprintf(out, "    %s %s\n", cliui.SuccessMark, b)
	}
	fmt.Fprintln(out)
	return nil
}

func streak(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
