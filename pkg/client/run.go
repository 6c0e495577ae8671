package client

import (
	"context"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// MaxSourceLength is the largest program the runner accepts, in characters.
const MaxSourceLength = 5000

var languagePattern = regexp.MustCompile(`^[a-zA-Z0-9+#]+$`)

// RunRequest submits a program to the sandboxed runner.
type RunRequest struct {
	Language string `json:"language" validate:"required,language"`
	Source   string `json:"source" validate:"min=1,max=5000"`
}

// RunResult is the runner's answer. Stderr and ExecutionTimeMS are only set
// once the program has actually run.
type RunResult struct {
	Stdout          string  `json:"stdout"`
	Stderr          *string `json:"stderr,omitempty"`
	Status          string  `json:"status"`
	ExecutionTimeMS *int    `json:"execution_time_ms,omitempty"`
}

// Completed reports whether the program finished.
func (r *RunResult) Completed() bool {
	return r.Status == "completed"
}

// RunCode submits a program. The backend rate limits this endpoint; check
// IsRateLimited on the returned error.
func (c *Client) RunCode(ctx context.Context, req RunRequest) (*RunResult, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	res := &RunResult{}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "run"), req, res); err != nil {
		return nil, err
	}
	return res, nil
}

func validateLanguage(fl validator.FieldLevel) bool {
	return languagePattern.MatchString(fl.Field().String())
}
