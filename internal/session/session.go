// Package session persists the login session between huq invocations: the
// opaque bearer token plus the cached identity and active project. This is
// the only thing huq ever writes to disk — HUs and projects live on the
// backend.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dmorales/huq/internal/models"
)

// Session is the on-disk session file shape.
type Session struct {
	Token           string `yaml:"token"`
	Username        string `yaml:"username"`
	Email           string `yaml:"email"`
	UserID          string `yaml:"user_id"`
	ActiveProjectID string `yaml:"active_project_id,omitempty"`
	ActiveProject   string `yaml:"active_project,omitempty"`
}

// User rebuilds the cached identity.
func (s Session) User() models.User {
	return models.User{ID: s.UserID, Username: s.Username, Email: s.Email, IsActive: true}
}

// Store reads and writes the session file.
type Store struct {
	path string
}

// NewStore creates a store rooted at dir (normally ~/.config/huq).
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, "session.yaml")}
}

// Path returns the session file location.
func (s *Store) Path() string { return s.path }

// Load reads the current session. A missing file returns ok=false, not an
// error — it just means nobody is logged in.
func (s *Store) Load() (Session, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return Session{}, false, fmt.Errorf("parse session: %w", err)
	}
	if sess.Token == "" {
		return Session{}, false, nil
	}
	return sess, true, nil
}

// Save writes the session with owner-only permissions (it holds the token).
func (s *Store) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing an absent session is not an
// error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
