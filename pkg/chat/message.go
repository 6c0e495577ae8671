// Package chat decodes the tutor chat stream into typed messages.
//
// The backend answers a chat request with a Server-Sent Events body whose
// data lines carry JSON objects tagged by a "type" discriminant. Two kinds are
// understood: "chunk" (a retrieved reference snippet) and "response" (the
// final answer). Anything else is skipped so that newer servers can add kinds
// without breaking older clients.
package chat

// Kind discriminates the variants of Message.
type Kind string

const (
	// KindChunk marks a retrieval chunk.
	KindChunk Kind = "chunk"

	// KindResponse marks the final response of a turn.
	KindResponse Kind = "response"
)

// RetrievedChunk is a unit of supporting reference text returned by the
// retrieval backend alongside its relevance metadata.
type RetrievedChunk struct {
	Text          string            `json:"text"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Score         float64           `json:"score"`
	HintsRevealed int               `json:"hintsRevealed"`
}

// Response is the synthesized answer text for one chat turn.
type Response struct {
	Text string `json:"text"`
}

// Message is one decoded stream payload. Exactly one of Chunk or Response is
// set, matching Kind.
type Message struct {
	Kind     Kind
	Chunk    *RetrievedChunk
	Response *Response
}

// Text returns the text carried by the message regardless of its kind.
func (m Message) Text() string {
	switch m.Kind {
	case KindChunk:
		if m.Chunk != nil {
			return m.Chunk.Text
		}
	case KindResponse:
		if m.Response != nil {
			return m.Response.Text
		}
	}
	return ""
}
