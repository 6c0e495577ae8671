// Package credentials stores the bearer tokens tutor sends to the backend.
//
// Tokens are obtained out of band (the school portal hands them out) and
// kept per profile in credentials.toml inside the .tutor/ directory. The
// TUTOR_API_TOKEN environment variable overrides whatever is stored.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/wahida/tutor/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0

	// TokenEnvVar overrides the stored token for every profile.
	TokenEnvVar = "TUTOR_API_TOKEN"
)

// ErrEmptyToken is returned when storing a blank token.
var ErrEmptyToken = errors.New("credentials: empty access token")

// Manager manages reading and writing credentials.toml in the .tutor/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .tutor/ directory; otherwise the standard dotdir resolution applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:  currentVersion,
				Profiles: make(map[string]ProfileCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Profiles == nil {
		creds.Profiles = make(map[string]ProfileCredential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetToken stores the access token for the given profile.
func (m *Manager) SetToken(profile string, cred ProfileCredential) error {
	if cred.AccessToken == "" {
		return ErrEmptyToken
	}

	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Profiles[profile] = cred

	return m.Save(creds)
}

// GetToken returns the stored credential for the given profile and whether
// one exists.
func (m *Manager) GetToken(profile string) (ProfileCredential, bool, error) {
	creds, err := m.Load()
	if err != nil {
		return ProfileCredential{}, false, err
	}

	pc, ok := creds.Profiles[profile]
	return pc, ok, nil
}

// RemoveToken deletes the stored credential for a profile.
func (m *Manager) RemoveToken(profile string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Profiles, profile)

	return m.Save(creds)
}

// ListProfiles returns the names of profiles that have stored credentials.
func (m *Manager) ListProfiles() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	profiles := make([]string, 0, len(creds.Profiles))
	for name := range creds.Profiles {
		profiles = append(profiles, name)
	}

	sort.Strings(profiles)

	return profiles, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}
