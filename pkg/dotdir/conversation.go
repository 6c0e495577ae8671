package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	conversationFile = "conversation.json"
)

// ConversationState is the persisted pointer to the conversation that
// `tutor chat` resumes. Turns themselves live in the transcript store.
type ConversationState struct {
	// ID groups the turns of one conversation in the transcript store.
	ID string `json:"id"`

	StartedAt time.Time `json:"started_at"`

	// Turns counts the questions asked in this conversation so far.
	Turns int `json:"turns"`

	// HintsRevealed is the number of hints the student opened on the last
	// turn.
	HintsRevealed int `json:"hints_revealed,omitempty"`
}

// NewConversationState starts a fresh conversation with a random ID.
func NewConversationState() *ConversationState {
	return &ConversationState{
		ID:        uuid.Must(uuid.NewV7()).String(),
		StartedAt: time.Now().UTC(),
	}
}

// LoadConversation loads the conversation state from a target
// .tutor/conversation.json. Returns nil, nil if none has been saved yet.
func (m *Manager) LoadConversation(overrideDir string) (*ConversationState, error) {
	path, err := m.Path(overrideDir, conversationFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading conversation state: %w", err)
	}

	state := &ConversationState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing conversation state: %w", err)
	}

	if state.ID == "" {
		return nil, errors.New("parsing conversation state: missing id")
	}

	return state, nil
}

// SaveConversation persists the conversation state.
func (m *Manager) SaveConversation(state *ConversationState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil conversation state")
	}

	path, err := m.Path(overrideDir, conversationFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling conversation state: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing conversation state: %w", err)
	}

	return nil
}

// ClearConversation removes the conversation state so the next chat starts
// a new conversation. Returns nil if it was already cleared.
func (m *Manager) ClearConversation(overrideDir string) error {
	path, err := m.Path(overrideDir, conversationFile)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing conversation state: %w", err)
	}

	return nil
}

// ResumeOrStart returns the saved conversation, or a new one when none is
// saved or fresh is set. A new conversation is not persisted until the
// caller saves it.
func (m *Manager) ResumeOrStart(overrideDir string, fresh bool) (*ConversationState, error) {
	if fresh {
		return NewConversationState(), nil
	}

	state, err := m.LoadConversation(overrideDir)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return NewConversationState(), nil
	}

	return state, nil
}
