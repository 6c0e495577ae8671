package chat

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/wahida/tutor/pkg/sse"
)

// Stream yields the known messages of a chat response body in arrival order.
// A Stream is not safe for concurrent use.
type Stream struct {
	reader *sse.Reader
	logger *slog.Logger
}

// NewStream returns a Stream reading from body. It returns ErrNoStream when
// body is nil.
func NewStream(body io.Reader, opts ...Option) (*Stream, error) {
	if body == nil {
		return nil, ErrNoStream
	}

	o := newOptions(opts)
	return &Stream{
		reader: sse.NewReader(body, o.readerOptions()...),
		logger: o.logger,
	}, nil
}

// Next returns the next known message, skipping payloads of unknown kind.
// It returns nil, nil once the body is exhausted.
func (s *Stream) Next() (*Message, error) {
	for {
		ev, err := s.reader.Next()
		if err != nil {
			return nil, fmt.Errorf("reading chat stream: %w", err)
		}
		if ev == nil {
			return nil, nil
		}

		msg, typeErr, err := decode(ev.Data)
		if errors.Is(err, ErrUnknownKind) {
			s.logger.Debug("skipping chat payload",
				"event", ev.Type,
				"data", ev.Data,
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		if typeErr != nil {
			s.logger.Debug("chat payload field left empty",
				"kind", msg.Kind,
				"field", typeErr.Field,
				"error", typeErr,
			)
		}

		return &msg, nil
	}
}

// All returns a single-use sequence over the remaining messages. The first
// error ends the sequence and is yielded with a zero Message.
func (s *Stream) All() iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		for {
			msg, err := s.Next()
			if err != nil {
				yield(Message{}, err)
				return
			}
			if msg == nil {
				return
			}
			if !yield(*msg, nil) {
				return
			}
		}
	}
}
