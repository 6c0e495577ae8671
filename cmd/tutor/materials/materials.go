// Package materialscmder provides the materials command for browsing lesson
// pages.
package materialscmder

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/materials"
)

const materialsLongDesc string = `Browse lesson materials.

Materials are markdown pages with YAML front matter, stored as
<materials-dir>/<grade>/<slug>.md. The directory defaults to materials.dir
in the config.

Examples:
  tutor materials list
  tutor materials show persamaan-linear
  tutor materials show persamaan-linear --watch
  tutor materials list --materials-dir ./content`

const materialsShortDesc string = "Browse lesson materials"

func NewMaterialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materials",
		Short: materialsShortDesc,
		Long:  materialsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())

	return cmd
}

// library resolves the materials directory for cmd.
func library(cmd *cobra.Command) (*materials.Library, error) {
	cfg, err := config.ForCommand(cmd, config.FlagMaterialsDir)
	if err != nil {
		return nil, err
	}
	return materials.NewLibrary(cfg.Materials.Dir), nil
}

// terminal returns out as a file when it is one, so rendering can detect
// the terminal.
func terminal(out io.Writer) *os.File {
	f, _ := out.(*os.File)
	return f
}
