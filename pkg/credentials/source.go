package credentials

import (
	"context"
	"os"
	"time"
)

// Source hands the access token of one profile to the API client.
type Source struct {
	mgr     *Manager
	profile string
	now     func() time.Time
}

// NewSource returns a Source reading profile from mgr. A nil mgr yields a
// Source that only consults the environment.
func NewSource(mgr *Manager, profile string) *Source {
	return &Source{mgr: mgr, profile: profile, now: time.Now}
}

// Token returns the bearer token to send, or "" when none is configured.
// TUTOR_API_TOKEN takes precedence over the stored profile. An expired
// stored token is still returned; the backend decides whether to accept it.
func (s *Source) Token(_ context.Context) (string, error) {
	if tok := os.Getenv(TokenEnvVar); tok != "" {
		return tok, nil
	}

	if s.mgr == nil {
		return "", nil
	}

	pc, ok, err := s.mgr.GetToken(s.profile)
	if err != nil || !ok {
		return "", err
	}

	return pc.AccessToken, nil
}

// Expired reports whether the stored token for the profile is past its
// recorded expiry. It is false when the environment supplies the token.
func (s *Source) Expired() bool {
	if os.Getenv(TokenEnvVar) != "" || s.mgr == nil {
		return false
	}

	pc, ok, err := s.mgr.GetToken(s.profile)
	if err != nil || !ok {
		return false
	}
	return pc.Expired(s.now())
}
