// Package securestorage remembers server connection profiles between
// runs. Non-secret fields live in a JSON file under the user config
// directory; passwords go to the OS keyring, keyed by profile name, and
// never touch disk.
package securestorage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const serviceName = "SQLScope"

// ErrNotFound is returned when a profile does not exist.
var ErrNotFound = errors.New("profile not found")

// Profile is a saved connection, minus the password.
type Profile struct {
	Name      string `json:"name"`
	Driver    string `json:"driver"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Database  string `json:"database"`
	TrustCert bool   `json:"trust_cert"`
}

// Storage persists connection profiles.
type Storage struct {
	path string
}

// NewStorage creates a storage rooted at dir (typically the app's user
// config directory).
func NewStorage(dir string) *Storage {
	return &Storage{path: filepath.Join(dir, "profiles.json")}
}

// List returns all saved profiles, without passwords.
func (s *Storage) List() ([]Profile, error) {
	return s.load()
}

// Save stores or replaces a profile and puts its password in the
// keyring. A keyring failure fails the save; the profile file is not
// written with a password the keyring doesn't hold.
func (s *Storage) Save(p Profile, password string) error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if err := keyring.Set(serviceName, p.Name, password); err != nil {
		return fmt.Errorf("storing password in keyring: %w", err)
	}

	profiles, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range profiles {
		if profiles[i].Name == p.Name {
			profiles[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, p)
	}
	return s.store(profiles)
}

// Password retrieves the password for a saved profile from the keyring.
func (s *Storage) Password(name string) (string, error) {
	secret, err := keyring.Get(serviceName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading password from keyring: %w", err)
	}
	return secret, nil
}

// Delete removes a profile and its keyring entry.
func (s *Storage) Delete(name string) error {
	profiles, err := s.load()
	if err != nil {
		return err
	}
	kept := profiles[:0]
	for _, p := range profiles {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if err := s.store(kept); err != nil {
		return err
	}
	// The keyring entry may already be gone; that's fine.
	_ = keyring.Delete(serviceName, name)
	return nil
}

func (s *Storage) load() ([]Profile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}
	return profiles, nil
}

func (s *Storage) store(profiles []Profile) error {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing profiles: %w", err)
	}
	return nil
}
