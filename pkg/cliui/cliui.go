// Package cliui provides reusable terminal UI helpers (spinners, step indicators,
// markdown rendering) for tutor CLI commands.
package cliui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true)
	NameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("218"))
	HeaderStyle  = lipgloss.NewStyle().Bold(true)
	HashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	PreviewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	HintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step runs fn and prints msg with a ✓ or ✗ and the elapsed time. The
// spinner is drawn only when w is a terminal, so piped output holds just
// the final line.
func Step(w io.Writer, msg string, fn func() error) error {
	start := time.Now()

	var err error
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		err = spin(f, msg, fn)
		fmt.Fprint(w, "\r")
	} else {
		err = fn()
	}

	fmt.Fprintf(w, "  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(time.Since(start)))),
	)
	return err
}

// spin redraws a spinner frame on w until fn returns.
func spin(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Go(func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			fmt.Fprintf(w, "\r  %s %s", spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), msg)
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	})

	err := fn()
	close(done)
	wg.Wait()
	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// MarkdownStyle picks the glamour style for out: "notty" when out is not a
// terminal, otherwise "dark" or "light" following the terminal background.
func MarkdownStyle(out *os.File) string {
	if out == nil || !IsTerminal(out) {
		return "notty"
	}
	if termenv.NewOutput(out).HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// RenderMarkdown renders markdown content for display on out using glamour.
// On error the raw content is returned alongside it.
func RenderMarkdown(out *os.File, content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(MarkdownStyle(out)),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
