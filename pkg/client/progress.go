package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// lastActiveLayout is the calendar date format the backend uses.
const lastActiveLayout = time.DateOnly

// ProgressSummary is a student's learning streak and badges.
type ProgressSummary struct {
	UserID     string   `json:"user_id"`
	StreakDays int      `json:"streak_days"`
	Badges     []string `json:"badges"`

	// LastActive is a calendar date, "YYYY-MM-DD".
	LastActive string `json:"last_active"`
}

// LastActiveDate parses LastActive.
func (p *ProgressSummary) LastActiveDate() (time.Time, error) {
	t, err := time.Parse(lastActiveLayout, p.LastActive)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing last_active %q: %w", p.LastActive, err)
	}
	return t, nil
}

// GetProgress fetches the progress summary for a student.
func (c *Client) GetProgress(ctx context.Context, userID string) (*ProgressSummary, error) {
	if err := c.validate.Var(userID, "required"); err != nil {
		return nil, &ValidationError{Err: err}
	}

	p := &ProgressSummary{}
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("api", "progress", userID), nil, p); err != nil {
		return nil, err
	}
	return p, nil
}
