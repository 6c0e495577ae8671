package materialscmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/cliui"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/logger"
	"github.com/wahida/tutor/pkg/materials"
)

const showLongDesc string = `Show a lesson page.

Renders the page's markdown for the terminal. With --watch the page is
shown again every time its file changes, until Ctrl+C.

Examples:
  tutor materials show persamaan-linear
  tutor materials show persamaan-linear --watch`

const showShortDesc string = "Show a lesson page"

func newShowCmd() *cobra.Command {
	var (
		dir   string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := library(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			m, err := lib.Find(args[0])
			if err != nil {
				if errors.Is(err, materials.ErrNotFound) {
					return fmt.Errorf("no material named %q in %s", args[0], lib.Dir())
				}
				return err
			}
			show(out, m)

			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runWatch(ctx, lib, m.Slug, out, logger.FromFlags(cmd.Flags()).Warn)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagMaterialsDir, &dir)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Show the page again whenever it changes")

	return cmd
}

func runWatch(ctx context.Context, lib *materials.Library, slug string, out io.Writer, warn func(string, ...any)) error {
	fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("Watching for changes, Ctrl+C to stop."))

	err := lib.Watch(ctx, slug, func(m *materials.Material, err error) {
		if err != nil {
			warn("reloading material", "slug", slug, "error", err)
			return
		}
		show(out, m)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func show(out io.Writer, m *materials.Material) {
	fmt.Fprintf(out, "\n  %s %s\n", cliui.HeaderStyle.Render(m.Title()), cliui.DimStyle.Render(m.Grade))
	if m.Meta.Topik != "" {
		fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Topik:"), m.Meta.Topik)
	}

	rendered, err := cliui.RenderMarkdown(terminal(out), m.Body)
	if err != nil {
		fmt.Fprintf(out, "  %s %v\n", cliui.WarnStyle.Render("rendering failed:"), err)
	}
	fmt.Fprintln(out, rendered)
}
