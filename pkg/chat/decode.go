package chat

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Decode parses one data line payload.
//
// Invalid JSON yields a *PayloadError. Valid JSON that is not an object, or
// whose "type" is missing, not a string or not a known Kind, yields
// ErrUnknownKind. Fields of a known kind are not validated: a field with
// the wrong JSON type is left at its zero value like a missing one.
func Decode(data string) (Message, error) {
	msg, _, err := decode(data)
	return msg, err
}

// decode is Decode that also reports the first field left at its zero value
// because of a JSON type mismatch.
func decode(data string) (Message, *json.UnmarshalTypeError, error) {
	raw := []byte(data)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Message{}, nil, ErrUnknownKind
		}
		return Message{}, nil, &PayloadError{Data: data, Err: err}
	}

	var kind Kind
	if err := json.Unmarshal(fields["type"], &kind); err != nil {
		return Message{}, nil, ErrUnknownKind
	}

	var (
		msg    = Message{Kind: kind}
		target any
	)
	switch kind {
	case KindChunk:
		msg.Chunk = &RetrievedChunk{}
		target = msg.Chunk
	case KindResponse:
		msg.Response = &Response{}
		target = msg.Response
	default:
		return Message{}, nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	// encoding/json keeps filling the remaining fields past a type mismatch.
	err := json.Unmarshal(raw, target)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return msg, nil, nil
	case errors.As(err, &typeErr):
		return msg, typeErr, nil
	default:
		return Message{}, nil, &PayloadError{Kind: kind, Data: data, Err: err}
	}
}
