package portalclient

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/spec-kit/crm-service/internal/api/dto"
)

// Session is the cached portal credential pair. Token and contact are
// always persisted and cleared together; a store must never expose one
// without the other.
type Session struct {
	Token   string             `json:"token"`
	Contact dto.ContactProfile `json:"contact"`
}

// SessionStore persists the portal session across restarts.
type SessionStore interface {
	Load() (Session, bool, error)
	Save(session Session) error
	Clear() error
}

// MemorySessionStore keeps the session in memory. Used by tests and
// short-lived embedders.
type MemorySessionStore struct {
	mu      sync.Mutex
	session Session
	present bool
}

// NewMemorySessionStore builds an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Load returns the stored session, if any.
func (s *MemorySessionStore) Load() (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.present, nil
}

// Save stores the session pair.
func (s *MemorySessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.present = true
	return nil
}

// Clear drops the session pair.
func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	s.present = false
	return nil
}

// FileSessionStore persists the session as a single JSON file, so the token
// and contact profile are written and removed atomically.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionStore builds a store rooted at path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Load reads the session file. A missing or unreadable file reads as no
// session; a corrupt file returns an error so the caller can fail closed.
func (s *FileSessionStore) Load() (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, false, err
	}
	if session.Token == "" || session.Contact.ID == "" {
		return Session{}, false, nil
	}
	return session, true, nil
}

// Save writes the session file via rename so readers never observe a half
// written pair.
func (s *FileSessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the session file.
func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
