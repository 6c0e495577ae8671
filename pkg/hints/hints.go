// Package hints implements progressive hint disclosure: a learner opens the
// hints derived from a turn's retrieved chunks one at a time.
package hints

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/wahida/tutor/pkg/chat"
)

// PreviewWidth is how many display cells of a chunk become its hint.
const PreviewWidth = 120

// Hints shown when a turn produced no chunks of its own.
const (
	// DefaultHint is offered before the learner has asked anything useful.
	DefaultHint = "Start by understanding what the question is asking."

	// NoResponseHint replaces an answer stream that yielded nothing.
	NoResponseHint = "No response from the server. Use the basic concept: set up the equation and rearrange the variables."

	// FailureHint replaces an answer stream that failed.
	FailureHint = "Use the distributive property and collect the variables on one side of the equation."
)

// Preview returns the hint text for one chunk: its first PreviewWidth
// display cells with surrounding whitespace removed.
func Preview(text string) string {
	return strings.TrimSpace(ansi.Truncate(strings.TrimSpace(text), PreviewWidth, ""))
}

// Panel tracks which hints have been revealed. The zero value has no hints
// and reveals DefaultHint.
type Panel struct {
	hints    []string
	revealed int
}

// NewPanel builds a panel from chunks, in arrival order. A positive limit
// caps how many hints are offered. Chunks with no text are skipped; when
// none remain the panel offers DefaultHint.
func NewPanel(chunks []chat.RetrievedChunk, limit int) *Panel {
	p := &Panel{}
	for _, c := range chunks {
		if limit > 0 && len(p.hints) == limit {
			break
		}
		if h := Preview(c.Text); h != "" {
			p.hints = append(p.hints, h)
		}
	}

	if len(p.hints) == 0 {
		p.hints = []string{DefaultHint}
	}

	return p
}

// Fallback returns a panel offering only text, already revealed.
func Fallback(text string) *Panel {
	return &Panel{hints: []string{text}, revealed: 1}
}

// Reveal opens the next hint and returns it. It returns false once every
// hint is open; the count never grows past Total.
func (p *Panel) Reveal() (string, bool) {
	if len(p.hints) == 0 {
		p.hints = []string{DefaultHint}
	}
	if p.revealed >= len(p.hints) {
		return "", false
	}

	p.revealed++
	return p.hints[p.revealed-1], true
}

// Revealed returns the hints opened so far.
func (p *Panel) Revealed() []string {
	return p.hints[:p.revealed]
}

// RevealedCount returns how many hints are open.
func (p *Panel) RevealedCount() int {
	return p.revealed
}

// Total returns how many hints the panel offers.
func (p *Panel) Total() int {
	if len(p.hints) == 0 {
		return 1
	}
	return len(p.hints)
}

// Remaining returns how many hints are still closed.
func (p *Panel) Remaining() int {
	return p.Total() - p.revealed
}
