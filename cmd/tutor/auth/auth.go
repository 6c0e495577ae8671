// Package authcmder provides the auth command for storing backend access
// tokens.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wahida/tutor/pkg/cliui"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/credentials"
)

const defaultProfile = "default"

const authLongDesc string = `Store an access token for the tutor backend.

Tokens are stored per profile in credentials.toml in the .tutor/ directory
and sent as a bearer token with every request. api.profile picks the
profile; TUTOR_API_TOKEN overrides the stored token entirely.

Examples:
  tutor auth                       Prompt for the default profile's token
  tutor auth classroom             Prompt for the classroom profile's token
  tutor auth --expires 720h        Record when the token runs out
  tutor auth --list                List stored profiles
  tutor auth --remove classroom    Remove a stored profile
  echo $TOKEN | tutor auth         Pipe the token from stdin`

const authShortDesc string = "Store a backend access token"

type authCommander struct {
	list    bool
	remove  string
	expires time.Duration

	configDir string
	in        io.Reader
	out       io.Writer
}

func NewAuthCmd() *cobra.Command {
	cmder := &authCommander{}

	cmd := &cobra.Command{
		Use:   "auth [profile]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.configDir, _ = cmd.Flags().GetString(config.FlagConfigDir)
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()

			switch {
			case cmder.list:
				return cmder.runList()
			case cmder.remove != "":
				return cmder.runRemove(cmder.remove)
			default:
				profile := defaultProfile
				if len(args) == 1 {
					profile = args[0]
				}
				return cmder.runAuth(profile)
			}
		},
	}

	cmd.Flags().BoolVar(&cmder.list, "list", false, "List stored profiles")
	cmd.Flags().StringVar(&cmder.remove, "remove", "", "Remove the stored token for a profile")
	cmd.Flags().DurationVar(&cmder.expires, "expires", 0, "How long the token stays valid, e.g. 720h")

	return cmd
}

func (c *authCommander) runAuth(profile string) error {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return errors.New("profile name cannot be empty")
	}

	token, err := c.readToken(profile)
	if err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	cred := credentials.ProfileCredential{AccessToken: token}
	if c.expires > 0 {
		cred.ExpiresAt = time.Now().Add(c.expires).UTC().Truncate(time.Second)
	}

	if err := mgr.SetToken(profile, cred); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Stored token for %s\n", cliui.SuccessMark, cliui.NameStyle.Render(profile))
	if !cred.ExpiresAt.IsZero() {
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render("Expires "+cred.ExpiresAt.Local().Format(time.RFC1123)))
	}
	if os.Getenv(credentials.TokenEnvVar) != "" {
		fmt.Fprintf(c.out, "  %s %s is set and takes precedence over stored tokens.\n",
			cliui.WarnStyle.Render("!"), credentials.TokenEnvVar)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *authCommander) runList() error {
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	profiles, err := mgr.ListProfiles()
	if err != nil {
		return err
	}

	if len(profiles) == 0 {
		fmt.Fprintf(c.out, "\n  %s No stored tokens.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(c.out, "  Use 'tutor auth [profile]' to store one.\n\n")
		return nil
	}

	now := time.Now()
	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Stored tokens"))
	for _, p := range profiles {
		cred, _, err := mgr.GetToken(p)
		if err != nil {
			return err
		}

		switch {
		case cred.Expired(now):
			fmt.Fprintf(c.out, "  %s  %s  %s\n", cliui.FailMark, cliui.NameStyle.Render(p), cliui.WarnStyle.Render("expired"))
		case !cred.ExpiresAt.IsZero():
			fmt.Fprintf(c.out, "  %s  %s  %s\n", cliui.SuccessMark, cliui.NameStyle.Render(p),
				cliui.DimStyle.Render("expires "+cred.ExpiresAt.Local().Format(time.DateOnly)))
		default:
			fmt.Fprintf(c.out, "  %s  %s\n", cliui.SuccessMark, cliui.NameStyle.Render(p))
		}
	}
	fmt.Fprintln(c.out)

	return nil
}

func (c *authCommander) runRemove(profile string) error {
	profile = strings.TrimSpace(profile)

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveToken(profile); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Removed token for %s.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(profile))
	return nil
}

// readToken reads the token from the command's input. A terminal gets a
// hidden prompt; anything else is read up to the first newline.
func (c *authCommander) readToken(profile string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(c.out, "Enter access token for %s: ", profile)

		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return string(raw), nil
	}

	scanner := bufio.NewScanner(c.in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
