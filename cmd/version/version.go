// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/utils"
)

type versionCommander struct {
	short bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &versionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the tutor version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}
	cmd.Flags().BoolVar(&cmder.short, "short", false, "Print only the version number")

	return cmd
}

func (c *versionCommander) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if c.short {
		fmt.Fprintln(out, utils.BuildVersion())
		return nil
	}

	fmt.Fprintf(out, "tutor %s\n", utils.BuildVersion())
	fmt.Fprintf(out, "  commit:  %s\n", utils.Sha)
	fmt.Fprintf(out, "  built:   %s\n", utils.Buildtime)
	fmt.Fprintf(out, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}
