package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int

	// Detail is the backend's explanation, taken from a FastAPI style
	// {"detail": ...} body when present and the raw body otherwise.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
}

// RateLimited reports whether the backend throttled the request.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// NotFound reports whether the requested resource does not exist.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Unauthorized reports whether the access token was missing or rejected.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimited reports whether err is an *APIError for a throttled request.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.RateLimited()
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body errorBody
	if json.Unmarshal(raw, &body) != nil || len(body.Detail) == 0 {
		apiErr.Detail = strings.TrimSpace(string(raw))
		return apiErr
	}

	var detail string
	if json.Unmarshal(body.Detail, &detail) == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var details []validationDetail
	if json.Unmarshal(body.Detail, &details) == nil {
		msgs := make([]string, 0, len(details))
		for _, d := range details {
			if len(d.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", d.Loc[len(d.Loc)-1], d.Msg))
			} else {
				msgs = append(msgs, d.Msg)
			}
		}
		apiErr.Detail = strings.Join(msgs, "; ")
		return apiErr
	}

	apiErr.Detail = string(body.Detail)
	return apiErr
}

// ValidationError reports a request rejected before it was sent.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	var verrs validator.ValidationErrors
	if !errors.As(e.Err, &verrs) {
		return "invalid request: " + e.Err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "invalid request: " + strings.Join(msgs, ", ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
