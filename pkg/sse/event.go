// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// reader for consuming the tutor chat stream. It reassembles events from a
// body delivered in arbitrary chunk boundaries and can optionally tee the
// raw bytes to a second writer for debugging.
//
// Events are framed by a blank line ("\n\n"). Only "data:" lines carry a
// payload; "event:" and "id:" are recorded, comments and unknown fields are
// dropped.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n".
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}
