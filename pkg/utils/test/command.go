package testutils

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"
)

// ExecuteCommand runs cmd with args, feeding stdin and capturing stdout and
// stderr together.
func ExecuteCommand(cmd *cobra.Command, stdin string, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}
