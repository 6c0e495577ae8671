package client

import (
	"context"
	"fmt"
	"net/http"
)

type healthResponse struct {
	Status string `json:"status"`
}

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) error {
	var h healthResponse
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("healthz"), nil, &h); err != nil {
		return err
	}

	if h.Status != "ok" {
		return fmt.Errorf("backend unhealthy: status %q", h.Status)
	}
	return nil
}
