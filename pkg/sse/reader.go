package sse

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const (
	defaultReadSize     = 4 * 1024
	defaultMaxEventSize = 1024 * 1024
)

// ErrEventTooLarge is returned when a single undelimited event grows beyond
// the configured maximum size.
var ErrEventTooLarge = errors.New("sse: event exceeds maximum size")

// delimiter separates events in the stream.
var delimiter = []byte("\n\n")

// Reader reads SSE events from a source io.Reader.
//
// ┌──────────────────┐
// │ source io.Reader │──▶ (optional tee io.Writer, raw bytes)
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │ UTF-8 decoder    │  keeps partial runes between reads
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │ pending buffer   │  cut on "\n\n"
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Event       │
// └──────────────────┘
//
// A Reader is not safe for concurrent use. Its pending buffer lives only as
// long as the Reader itself.
type Reader struct {
	src     io.Reader
	readBuf []byte

	// pending holds decoded bytes that have not yet been confirmed as a
	// complete, delimiter-terminated event.
	pending []byte

	eof           bool
	flushTrailing bool
	maxEventSize  int
}

// Option configures a Reader created with NewReader.
type Option func(*options)

type options struct {
	tee           io.Writer
	flushTrailing bool
	maxEventSize  int
	readSize      int
}

// WithTee writes every raw byte read from the source to w before decoding.
func WithTee(w io.Writer) Option {
	return func(o *options) {
		o.tee = w
	}
}

// WithFlushTrailing controls what happens to data left in the pending buffer
// when the source ends without a closing blank line. By default it is
// dropped; when enabled it is parsed as one final event.
func WithFlushTrailing(flush bool) Option {
	return func(o *options) {
		o.flushTrailing = flush
	}
}

// WithMaxEventSize caps the size of a single pending event in bytes.
func WithMaxEventSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEventSize = n
		}
	}
}

// WithReadSize sets the size of each read issued against the source.
func WithReadSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readSize = n
		}
	}
}

// NewReader returns a Reader that parses SSE events from src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	o := &options{
		maxEventSize: defaultMaxEventSize,
		readSize:     defaultReadSize,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.tee != nil {
		src = io.TeeReader(src, o.tee)
	}

	return &Reader{
		src:           unicode.UTF8BOM.NewDecoder().Reader(src),
		readBuf:       make([]byte, o.readSize),
		flushTrailing: o.flushTrailing,
		maxEventSize:  o.maxEventSize,
	}
}

// Next returns the next parsed SSE event. It blocks until a complete event is
// available (terminated by a blank line in the stream).
// Next returns nil, nil when the source is exhausted.
func (r *Reader) Next() (*Event, error) {
	for {
		if block, rest, ok := bytes.Cut(r.pending, delimiter); ok {
			ev := parseBlock(block)
			r.pending = rest
			if ev != nil {
				return ev, nil
			}
			continue
		}

		if r.eof {
			return r.drain(), nil
		}

		if len(r.pending) > r.maxEventSize {
			return nil, ErrEventTooLarge
		}

		n, err := r.src.Read(r.readBuf)
		if n > 0 {
			r.pending = append(r.pending, r.readBuf[:n]...)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				r.eof = true
				continue
			}
			return nil, err
		}
	}
}

// drain handles whatever is left in the pending buffer once the source is
// exhausted. The buffer is always released.
func (r *Reader) drain() *Event {
	rest := r.pending
	r.pending = nil

	if !r.flushTrailing || len(rest) == 0 {
		return nil
	}

	return parseBlock(rest)
}

// parseBlock turns one blank-line delimited block into an Event. It returns
// nil when the block carries no data line.
func parseBlock(block []byte) *Event {
	if len(block) == 0 {
		return nil
	}

	var (
		ev      Event
		data    []string
		hasData bool

		// open is set after a "data:" line with an empty value. A following
		// line that is not a field carries that value, as "data:\s*" would
		// match across the line break.
		open bool
	)

	for line := range strings.SplitSeq(string(block), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, ":") {
			open = false
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		if open && !knownField(field) {
			data[len(data)-1] = strings.TrimLeft(line, " \t")
			open = false
			continue
		}
		open = false

		switch field {
		case "data":
			value = strings.TrimLeft(value, " \t")
			data = append(data, value)
			hasData = true
			open = value == ""
		case "event":
			ev.Type = strings.TrimPrefix(value, " ")
		case "id":
			ev.ID = strings.TrimPrefix(value, " ")
		default:
			// "retry" and unknown fields are ignored.
		}
	}

	if !hasData {
		return nil
	}

	ev.Data = strings.Join(data, "\n")
	return &ev
}

func knownField(name string) bool {
	switch name {
	case "data", "event", "id", "retry":
		return true
	}
	return false
}
