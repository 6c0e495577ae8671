// Package runcmder provides the run command for executing code in the
// backend sandbox.
package runcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/cliui"
	"github.com/wahida/tutor/pkg/client"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/logger"
	"github.com/wahida/tutor/pkg/session"
)

// languages maps file extensions to the runner's language names.
var languages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".go":   "go",
	".cpp":  "c++",
	".c":    "c",
	".java": "java",
	".rb":   "ruby",
}

type runCommander struct {
	apiTarget string
	timeout   string
	profile   string
	language  string

	cfg *config.Config
}

const runLongDesc string = `Run a program in the backend sandbox.

Reads the program from the given file, or from stdin when no file is
given. The language is taken from the file extension unless --language
is set; it is required when reading stdin. Programs are limited to 5000
characters and the runner rejects network access.

The sandbox is rate limited. When the limit is hit, wait a moment and
try again.

Examples:
  tutor run hello.py
  tutor run --language python < hello.py
  echo 'print(1 + 1)' | tutor run -l python`

const runShortDesc string = "Run code in the sandbox"

func NewRunCmd() *cobra.Command {
	cmder := &runCommander{}

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: runShortDesc,
		Long:  runLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ForCommand(cmd, config.FlagAPITarget, config.FlagTimeout, config.FlagProfile)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := cmder.request(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			configDir, _ := cmd.Flags().GetString(config.FlagConfigDir)
			c, err := session.NewClient(cmder.cfg,
				session.WithConfigDir(configDir),
				session.WithLogger(logger.FromFlags(cmd.Flags())),
			)
			if err != nil {
				return err
			}

			return runCode(cmd.Context(), c, req, cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagProfile, &cmder.profile)
	cmd.Flags().StringVarP(&cmder.language, "language", "l", "", "Program language, e.g. python")

	return cmd
}

func (c *runCommander) request(stdin io.Reader, args []string) (client.RunRequest, error) {
	var (
		src  []byte
		err  error
		lang = c.language
	)

	if len(args) == 1 {
		src, err = os.ReadFile(args[0])
		if err != nil {
			return client.RunRequest{}, fmt.Errorf("reading program: %w", err)
		}
		if lang == "" {
			lang = LanguageFor(args[0])
		}
	} else {
		src, err = io.ReadAll(stdin)
		if err != nil {
			return client.RunRequest{}, fmt.Errorf("reading program from stdin: %w", err)
		}
	}

	if lang == "" {
		return client.RunRequest{}, errors.New("cannot tell the language, set --language")
	}
	if strings.TrimSpace(string(src)) == "" {
		return client.RunRequest{}, errors.New("program is empty")
	}
	if n := utf8.RuneCount(src); n > client.MaxSourceLength {
		return client.RunRequest{}, fmt.Errorf("program is %d characters, the sandbox accepts at most %d", n, client.MaxSourceLength)
	}

	return client.RunRequest{Language: lang, Source: string(src)}, nil
}

// LanguageFor returns the runner language for path's extension, or "" when
// it is not recognized.
func LanguageFor(path string) string {
	return languages[strings.ToLower(filepath.Ext(path))]
}

func runCode(ctx context.Context, c *client.Client, req client.RunRequest, out io.Writer) error {
	var res *client.RunResult
	err := cliui.Step(out, fmt.Sprintf("Running %s program", req.Language), func() error {
		var err error
		res, err = c.RunCode(ctx, req)
		return err
	})
	if err != nil {
		if client.IsRateLimited(err) {
			return errors.New("the sandbox is busy, wait a moment and try again")
		}
		return fmt.Errorf("running program: %w", err)
	}

	fmt.Fprintln(out)
	if res.Stdout != "" {
		fmt.Fprintln(out, res.Stdout)
	}
	if res.Stderr != nil && *res.Stderr != "" {
		fmt.Fprintln(out, cliui.ErrorStyle.Render(*res.Stderr))
	}

	status := cliui.DimStyle.Render(res.Status)
	if res.ExecutionTimeMS != nil {
		status = cliui.DimStyle.Render(fmt.Sprintf("%s in %dms", res.Status, *res.ExecutionTimeMS))
	}
	mark := cliui.SuccessMark
	if !res.Completed() {
		mark = cliui.FailMark
	}
	fmt.Fprintf(out, "\n  %s %s\n\n", mark, status)
	return nil
}
