// Package credstore persists the single admin credential pair between runs
// and builds the Basic auth header every administrative request carries.
package credstore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tutelo/internal/domain/models"
)

// Scaffolding defaults. When nothing usable is stored the header is still
// built from these, so every admin request goes out with some credential and
// the upstream's 401/403 is the only authorization signal.
// TODO: make the fallback opt-in; today an empty store still authorizes
// against whatever the upstream accepts for admin/admin123.
const (
	fallbackUser = "admin"
	fallbackPass = "admin123"
)

var ErrNoCredential = errors.New("no stored credential")

// FileStore keeps the credential as a small JSON file. One active pair
// process-wide; reads go back to disk each time so a save is visible to the
// very next request.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func New(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("credstore: create dir: %w", err)
		}
	}

	return &FileStore{path: path}, nil
}

// Load returns the stored pair. A missing or unparseable file is reported as
// ErrNoCredential, never as a failure.
func (s *FileStore) Load() (models.AdminCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

func (s *FileStore) Save(cred models.AdminCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("credstore: marshal: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("credstore: write: %w", err)
	}

	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("credstore: remove: %w", err)
	}

	return nil
}

// BasicAuth builds the Authorization header value. Stored fields override
// the fallback per field; an absent or malformed store never refuses to
// build a header.
func (s *FileStore) BasicAuth() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, pass := fallbackUser, fallbackPass

	if cred, err := s.read(); err == nil {
		if cred.User != "" {
			user = cred.User
		}
		if cred.Pass != "" {
			pass = cred.Pass
		}
	}

	token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))

	return "Basic " + token
}

func (s *FileStore) read() (models.AdminCredential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.AdminCredential{}, ErrNoCredential
	}

	var cred models.AdminCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return models.AdminCredential{}, ErrNoCredential
	}

	return cred, nil
}
