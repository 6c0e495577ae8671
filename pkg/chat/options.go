package chat

import (
	"io"
	"log/slog"

	"github.com/wahida/tutor/pkg/logger"
	"github.com/wahida/tutor/pkg/sse"
)

// Option configures a Stream or a Consume call.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	tee           io.Writer
	flushTrailing bool
	maxEventSize  int
}

// WithLogger sets the logger used to report skipped payloads.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTee copies the raw stream bytes to w.
func WithTee(w io.Writer) Option {
	return func(o *options) {
		o.tee = w
	}
}

// WithFlushTrailing parses data left without a closing blank line when the
// stream ends instead of dropping it.
func WithFlushTrailing(flush bool) Option {
	return func(o *options) {
		o.flushTrailing = flush
	}
}

// WithMaxEventSize caps the size of a single event in bytes.
func WithMaxEventSize(n int) Option {
	return func(o *options) {
		o.maxEventSize = n
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) readerOptions() []sse.Option {
	ropts := []sse.Option{sse.WithFlushTrailing(o.flushTrailing)}
	if o.tee != nil {
		ropts = append(ropts, sse.WithTee(o.tee))
	}
	if o.maxEventSize > 0 {
		ropts = append(ropts, sse.WithMaxEventSize(o.maxEventSize))
	}
	return ropts
}
