package credentials

import "time"

// Credentials represents the stored access tokens in credentials.toml.
type Credentials struct {
	Version  int                          `toml:"version"`
	Profiles map[string]ProfileCredential `toml:"profiles"`
}

// ProfileCredential holds the bearer token for one backend profile.
type ProfileCredential struct {
	AccessToken string `toml:"access_token"`

	// ExpiresAt is informational; the backend is the authority on expiry.
	ExpiresAt time.Time `toml:"expires_at,omitempty"`
}

// Expired reports whether the credential carries an expiry in the past.
func (p ProfileCredential) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}
