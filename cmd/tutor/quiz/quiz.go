// Package quizcmder provides the quiz command for answering multiple choice
// questions.
package quizcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wahida/tutor/pkg/cliui"
	"github.com/wahida/tutor/pkg/client"
	"github.com/wahida/tutor/pkg/config"
	"github.com/wahida/tutor/pkg/logger"
	"github.com/wahida/tutor/pkg/session"
)

// DefaultQuizID is the question asked when none is named.
const DefaultQuizID = "intro-python"

type quizCommander struct {
	apiTarget string
	timeout   string
	profile   string
	answer    int

	cfg *config.Config
}

const quizLongDesc string = `Answer a multiple choice question.

Shows the question and its numbered choices, then asks for your answer
unless --answer is given. Choices are numbered from 1. The backend grades
the answer.

Examples:
  tutor quiz
  tutor quiz intro-python
  tutor quiz intro-python --answer 2`

const quizShortDesc string = "Answer a quiz question"

func NewQuizCmd() *cobra.Command {
	cmder := &quizCommander{}

	cmd := &cobra.Command{
		Use:   "quiz [id]",
		Short: quizShortDesc,
		Long:  quizLongDesc,
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
			id := DefaultQuizID
			if len(args) == 1 {
				id = args[0]
			}

			configDir, _ := cmd.Flags().GetString(config.FlagConfigDir)
			c, err := session.NewClient(cmder.cfg,
				session.WithConfigDir(configDir),
				session.WithLogger(logger.FromFlags(cmd.Flags())),
			)
			if err != nil {
				return err
			}

			return cmder.run(cmd.Context(), c, id, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagProfile, &cmder.profile)
	cmd.Flags().IntVar(&cmder.answer, "answer", 0, "Choice number to submit, starting at 1")

	return cmd
}

func (c *quizCommander) run(ctx context.Context, api *client.Client, id string, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	q, err := api.GetQuiz(ctx, id)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return fmt.Errorf("no quiz named %q", id)
		}
		return fmt.Errorf("fetching quiz: %w", err)
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render(q.Prompt))
	for i, choice := range q.Choices {
		fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%d.", i+1)), choice)
	}
	fmt.Fprintln(out)

	choice := c.answer
	if choice == 0 {
		choice, err = readChoice(in, out)
		if err != nil {
			return err
		}
	}

	if choice < 1 || choice > len(q.Choices) {
		return fmt.Errorf("answer must be between 1 and %d", len(q.Choices))
	}

	res, err := api.SubmitQuiz(ctx, client.QuizAttempt{
		QuestionID:    q.ID,
		SelectedIndex: choice - 1,
	})
	if err != nil {
		return fmt.Errorf("submitting answer: %w", err)
	}

	if res.Correct {
		fmt.Fprintf(out, "  %s Correct!\n\n", cliui.SuccessMark)
	} else {
		fmt.Fprintf(out, "  %s Not quite. Try again.\n\n", cliui.FailMark)
	}
	return nil
}

func readChoice(in io.Reader, out io.Writer) (int, error) {
	fmt.Fprint(out, "  answer> ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("reading answer: %w", err)
		}
		return 0, errors.New("no answer given")
	}

	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return 0, fmt.Errorf("answer must be a number: %w", err)
	}
	return n, nil
}
