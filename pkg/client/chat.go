package client

import (
	"context"
	"io"
	"net/http"

	"github.com/wahida/tutor/pkg/chat"
)

// ChatRequest asks the tutor one question.
type ChatRequest struct {
	Message        string `json:"message" validate:"required"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// OpenChat sends req and returns the streamed answer body. The caller owns
// the body. It returns chat.ErrNoStream when the response has no body.
func (c *Client) OpenChat(ctx context.Context, req ChatRequest) (io.ReadCloser, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, c.endpoint("api", "chat"), req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.send(httpReq)
	if err != nil {
		return nil, err
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, chat.ErrNoStream
	}

	return resp.Body, nil
}

// StreamChat sends req and dispatches the streamed answer to h, in arrival
// order, until the stream ends. See chat.Consume for the failure modes.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, h chat.Handlers, opts ...chat.Option) error {
	body, err := c.OpenChat(ctx, req)
	if err != nil {
		return err
	}

	opts = append([]chat.Option{chat.WithLogger(c.logger)}, opts...)
	return chat.Consume(ctx, body, h, opts...)
}
