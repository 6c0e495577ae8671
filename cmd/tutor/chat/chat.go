// Package chatcmder provides the chat command: ask the tutor questions and
// watch the retrieved sources and the answer stream in.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/chat"
	"github.com/wahida/tutor/pkg/cliui"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/dotdir"
	"github.com/wahida/tutor/pkg/hints"
	"github.com/wahida/tutor/pkg/logger"
	"github.com/wahida/tutor/pkg/session"
	"github.com/wahida/tutor/pkg/utils"
)

var (
	userPrompt  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	tutorPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Render("tutor> ")
)

type chatCommander struct {
	flags struct {
		apiTarget     string
		timeout       string
		profile       string
		flushTrailing bool
		maxHints      uint
		sqlite        string
		postgres      string
	}

	dump      string
	fresh     bool
	configDir string

	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	in     io.Reader

	ddm   *dotdir.Manager
	state *dotdir.ConversationState
	sess  *session.Session
	panel *hints.Panel
}

const chatLongDesc string = `Ask the tutor a question.

With a question argument, chat asks once and exits. Without one it starts
an interactive session. Sources retrieved for your question are listed as
they arrive, followed by the tutor's answer. Each answer comes with hints
built from its sources; open them one at a time with /hint.

The conversation is remembered in the .tutor/ directory and resumed by the
next "tutor chat". Use --new or /new to start over.

Session commands:
  /hint    Reveal the next hint
  /new     Start a new conversation
  /exit    Quit (Ctrl+D works too)

Examples:
  tutor chat "How do I solve 2x + 3 = 7?"
  tutor chat --new
  tutor chat --dump stream.log --flush-trailing`

const chatShortDesc string = "Ask the tutor a question"

const chatLogFile = "chat.log"

var configKeys = []string{
	config.FlagAPITarget,
	config.FlagTimeout,
	config.FlagProfile,
	config.FlagFlushTrailing,
	config.FlagMaxHints,
	config.FlagSQLite,
	config.FlagPostgres,
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ForCommand(cmd, configKeys...)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			cmder.configDir, _ = cmd.Flags().GetString(config.FlagConfigDir)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.logger = logger.FromFlags(cmd.Flags())
			cmder.out = cmd.OutOrStdout()
			cmder.in = cmd.InOrStdin()
			return cmder.run(cmd.Context(), strings.TrimSpace(strings.Join(args, " ")))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.flags.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.flags.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagProfile, &cmder.flags.profile)
	config.AddBoolFlag(cmd, config.Flags, config.FlagFlushTrailing, &cmder.flags.flushTrailing)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxHints, &cmder.flags.maxHints)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.flags.sqlite)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.flags.postgres)
	cmd.Flags().StringVar(&cmder.dump, "dump", "", "Append the raw answer stream to this file")
	cmd.Flags().BoolVar(&cmder.fresh, "new", false, "Start a new conversation")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, question string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.ddm = dotdir.NewManager()
	state, err := c.ddm.ResumeOrStart(c.configDir, c.fresh)
	if err != nil {
		return fmt.Errorf("loading conversation state: %w", err)
	}
	c.state = state

	if f, err := c.openLog(); err != nil {
		c.logger.Warn("chat log unavailable", "error", err)
	} else {
		defer f.Close()
		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithWriter(f),
			logger.WithJSON(true),
			logger.WithDebug(true),
		))
	}

	c.sess, err = session.New(ctx, c.cfg,
		session.WithLogger(c.logger),
		session.WithConfigDir(c.configDir),
		session.WithConversationID(state.ID),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.sess.Close(); err != nil {
			c.logger.Warn("closing session", "error", err)
		}
	}()

	if question != "" {
		c.ask(ctx, question)
		return c.saveState()
	}

	return c.repl(ctx)
}

// openLog opens the JSON log kept next to the conversation state. It records
// every turn at debug level regardless of --debug.
func (c *chatCommander) openLog() (*os.File, error) {
	path, err := c.ddm.Path(c.configDir, chatLogFile)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}

func (c *chatCommander) repl(ctx context.Context) error {
	fmt.Fprintln(c.out)
	if c.state.Turns > 0 {
		fmt.Fprintf(c.out, "  %s Resuming %s %s\n",
			cliui.SuccessMark,
			cliui.HashStyle.Render(utils.Truncate(c.state.ID, 8)),
			cliui.DimStyle.Render(fmt.Sprintf("(%d questions)", c.state.Turns)),
		)
	} else {
		fmt.Fprintf(c.out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}

	fmt.Fprintf(c.out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Tutor:"),
		cliui.NameStyle.Render(c.sess.Client().BaseURL()),
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /hint for a hint, /new to start over, /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)

	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			fmt.Fprintln(c.out)
			return c.saveState()
		case "/hint":
			c.revealHint()
			continue
		case "/new":
			c.newConversation()
			continue
		}

		c.ask(ctx, input)
		if err := c.saveState(); err != nil {
			c.logger.Warn("saving conversation state", "error", err)
		}
		fmt.Fprintln(c.out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return c.saveState()
}

// ask streams one answer. Ctrl+C cancels the answer in flight, not the
// session. Failures are reported inline with a fallback hint.
func (c *chatCommander) ask(ctx context.Context, question string) {
	askCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var opts []chat.Option
	if c.dump != "" {
		f, err := os.OpenFile(c.dump, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(c.out, "  %s opening dump file: %v\n", cliui.FailMark, err)
		} else {
			defer f.Close()
			opts = append(opts, chat.WithTee(f))
		}
	}

	answered := false
	turn, err := c.sess.Ask(askCtx, question, chat.Handlers{
		OnChunk: func(rc chat.RetrievedChunk) {
			topic := rc.Metadata["topik"]
			if topic == "" {
				topic = "Reference"
			}
			fmt.Fprintf(c.out, "  %s %s %s\n",
				cliui.DimStyle.Render("·"),
				cliui.KeyStyle.Render(topic),
				cliui.PreviewStyle.Render(utils.Truncate(rc.Text, 72)),
			)
		},
		OnResponse: func(r chat.Response) {
			fmt.Fprintf(c.out, "\n%s%s\n", tutorPrompt, r.Text)
			answered = true
		},
	}, opts...)

	c.state.Turns++

	switch {
	case err != nil:
		fmt.Fprintf(c.out, "  %s %v\n", cliui.FailMark, err)
		c.panel = hints.Fallback(hints.FailureHint)
		c.printHint(hints.FailureHint)
	case len(turn.Chunks) == 0 && !answered:
		c.panel = hints.Fallback(hints.NoResponseHint)
		c.printHint(hints.NoResponseHint)
	default:
		c.panel = hints.NewPanel(turn.Chunks, int(c.cfg.Chat.MaxHints))
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d hint(s) available, type /hint to reveal one.", c.panel.Total())))
	}
	c.state.HintsRevealed = c.panel.RevealedCount()
}

func (c *chatCommander) revealHint() {
	if c.panel == nil {
		c.panel = hints.NewPanel(nil, 0)
	}

	h, ok := c.panel.Reveal()
	if !ok {
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render("No more hints for this answer."))
		return
	}

	c.state.HintsRevealed = c.panel.RevealedCount()
	c.printHint(h)
}

func (c *chatCommander) printHint(h string) {
	fmt.Fprintf(c.out, "  %s %s\n", cliui.HintStyle.Render("hint:"), h)
}

func (c *chatCommander) newConversation() {
	c.state = dotdir.NewConversationState()
	c.sess.NewConversation()
	// Keep the session and the saved state on the same ID.
	c.state.ID = c.sess.ConversationID()
	c.panel = nil

	if err := c.saveState(); err != nil {
		c.logger.Warn("saving conversation state", "error", err)
	}
	fmt.Fprintf(c.out, "  %s New conversation\n\n", cliui.DimStyle.Render("●"))
}

func (c *chatCommander) saveState() error {
	if err := c.ddm.SaveConversation(c.state, c.configDir); err != nil {
		return fmt.Errorf("saving conversation state: %w", err)
	}
	return nil
}
