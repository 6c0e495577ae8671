package chat

import (
	"context"
	"io"
)

// Handlers receive the messages of a stream. Nil handlers are skipped.
type Handlers struct {
	OnChunk    func(RetrievedChunk)
	OnResponse func(Response)
}

// Consume reads body to the end and dispatches every known message to h,
// synchronously and in arrival order. Slow handlers stall reading.
//
// Consume owns body and closes it. Cancelling ctx closes body early and makes
// Consume return ctx.Err().
func Consume(ctx context.Context, body io.ReadCloser, h Handlers, opts ...Option) error {
	if body == nil {
		return ErrNoStream
	}
	defer body.Close()

	stop := context.AfterFunc(ctx, func() {
		body.Close()
	})
	defer stop()

	stream, err := NewStream(body, opts...)
	if err != nil {
		return err
	}

	for msg, err := range stream.All() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return err
		}

		switch msg.Kind {
		case KindChunk:
			if h.OnChunk != nil {
				h.OnChunk(*msg.Chunk)
			}
		case KindResponse:
			if h.OnResponse != nil {
				h.OnResponse(*msg.Response)
			}
		}
	}

	return ctx.Err()
}
