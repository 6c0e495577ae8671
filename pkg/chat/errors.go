package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStream is returned when a chat response has no readable body.
	ErrNoStream = errors.New("chat: no stream available")

	// ErrUnknownKind is returned by Decode for payloads whose "type" is not a
	// known Kind. Stream and Consume skip such payloads.
	ErrUnknownKind = errors.New("chat: unknown payload kind")
)

// PayloadError reports a data line whose content could not be decoded.
type PayloadError struct {
	// Kind is the discriminant, when the payload got far enough to have one.
	Kind Kind

	// Data is the raw data line content.
	Data string

	Err error
}

func (e *PayloadError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("chat: malformed payload: %v", e.Err)
	}
	return fmt.Sprintf("chat: malformed %s payload: %v", e.Kind, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}
