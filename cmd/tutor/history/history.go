// Package historycmder provides the history command for reviewing stored
// chat transcripts.
package historycmder

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/cliui"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/dotdir"
	"github.com/wahida/tutor/pkg/session"
	"github.com/wahida/tutor/pkg/storage"
	"github.com/wahida/tutor/pkg/utils"
)

type historyCommander struct {
	sqlite       string
	postgres     string
	limit        int
	conversation string
	all          bool
	sources      bool

	cfg       *config.Config
	configDir string
}

const historyLongDesc string = `Show past questions and answers.

Reads the transcript store configured by storage.sqlite_path or
storage.postgres_dsn. By default the current conversation is shown, the
one "tutor chat" would resume. Use --all for every conversation.

Examples:
  tutor history
  tutor history --limit 5
  tutor history --all --sources
  tutor history --conversation 0b7c6a4e-...`

const historyShortDesc string = "Show past questions and answers"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ForCommand(cmd, config.FlagSQLite, config.FlagPostgres)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			cmder.configDir, _ = cmd.Flags().GetString(config.FlagConfigDir)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlite)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgres)
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 0, "Show only the most recent N turns")
	cmd.Flags().StringVar(&cmder.conversation, "conversation", "", "Conversation ID to show")
	cmd.Flags().BoolVar(&cmder.all, "all", false, "Show every conversation")
	cmd.Flags().BoolVar(&cmder.sources, "sources", false, "List the retrieved sources of each answer")

	return cmd
}

func (c *historyCommander) run(ctx context.Context, out io.Writer) error {
	if c.cfg.Storage.SQLitePath == "" && c.cfg.Storage.PostgresDSN == "" {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("Transcripts are not kept. Set storage.sqlite_path to keep them."))
		return nil
	}

	opts := storage.ListOptions{Limit: c.limit}
	switch {
	case c.all:
	case c.conversation != "":
		opts.ConversationID = c.conversation
	default:
		state, err := dotdir.NewManager().LoadConversation(c.configDir)
		if err != nil {
			return fmt.Errorf("loading conversation state: %w", err)
		}
		if state == nil {
			fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No conversation yet. Start one with \"tutor chat\"."))
			return nil
		}
		opts.ConversationID = state.ID
	}

	store, err := session.OpenStore(ctx, c.cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	turns, err := store.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("listing turns: %w", err)
	}

	if len(turns) == 0 {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No turns recorded."))
		return nil
	}

	conversation := ""
	for _, t := range turns {
		if t.ConversationID != conversation {
			conversation = t.ConversationID
			fmt.Fprintf(out, "\n  %s %s\n", cliui.KeyStyle.Render("Conversation"), cliui.HashStyle.Render(utils.Truncate(conversation, 8)))
		}
		c.printTurn(out, t)
	}
	fmt.Fprintln(out)
	return nil
}

func (c *historyCommander) printTurn(out io.Writer, t *storage.Turn) {
	fmt.Fprintf(out, "\n  %s %s\n",
		cliui.DimStyle.Render(t.CreatedAt.Local().Format("2006-01-02 15:04")),
		cliui.NameStyle.Render(t.Question),
	)

	if c.sources {
		for _, rc := range t.Chunks {
			topic := rc.Metadata["topik"]
			if topic == "" {
				topic = "Reference"
			}
			fmt.Fprintf(out, "    %s %s %s\n",
				cliui.DimStyle.Render("·"),
				cliui.KeyStyle.Render(topic),
				cliui.PreviewStyle.Render(utils.Truncate(rc.Text, 72)),
			)
		}
	}

	if !t.Answered() {
		fmt.Fprintf(out, "    %s\n", cliui.WarnStyle.Render("(no answer)"))
		return
	}
	fmt.Fprintf(out, "    %s\n", t.Response)
}
