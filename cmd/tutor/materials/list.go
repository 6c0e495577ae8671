package materialscmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/cliui"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/materials"
)

const listLongDesc string = `List lesson materials grouped by grade.

Examples:
  tutor materials list`

const listShortDesc string = "List lesson materials"

func newListCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := library(cmd)
			if err != nil {
				return err
			}
			return runList(lib, cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagMaterialsDir, &dir)

	return cmd
}

func runList(lib *materials.Library, out io.Writer) error {
	all, err := lib.List()
	if err != nil {
		return err
	}

	if len(all) == 0 {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No materials found in "+lib.Dir()))
		return nil
	}

	grade := ""
	for _, m := range all {
		if m.Grade != grade {
			grade = m.Grade
			fmt.Fprintf(out, "\n  %s\n", cliui.HeaderStyle.Render(grade))
		}

		detail := m.Meta.Topik
		if m.Meta.Level != "" {
			if detail != "" {
				detail += ", "
			}
			detail += m.Meta.Level
		}

		fmt.Fprintf(out, "    %s  %s", cliui.NameStyle.Render(m.Slug), m.Title())
		if detail != "" {
			fmt.Fprintf(out, "  %s", cliui.DimStyle.Render("("+detail+")"))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out)
	return nil
}
