package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Identity is the locally cached record of the logged-in user. At most one
// identity is current per store.
type Identity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == "admin"
}

// Store is single-slot durable storage for the current identity. Every
// operation is total: storage failures degrade to "no persisted identity",
// they never propagate as panics or errors.
type Store interface {
	// SaveIdentity persists the identity. Saving nil returns false and
	// leaves any previously persisted identity untouched.
	SaveIdentity(identity *Identity) bool
	// Identity returns the persisted identity, or nil when absent or
	// unreadable.
	Identity() *Identity
	// IsAuthenticated reports whether an identity is persisted.
	IsAuthenticated() bool
	// ClearIdentity removes the persisted identity. Clearing an empty
	// store is a no-op success.
	ClearIdentity() bool
}

const identityFileName = "sigmadevelopers_user.json"

// FileStore persists the identity as a JSON blob at a fixed path, the
// Go-side equivalent of the site's localStorage slot.
type FileStore struct {
	path string
	log  zerolog.Logger
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// DefaultIdentityPath places the identity file under the user config dir.
func DefaultIdentityPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sigmadevelopers", identityFileName), nil
}

func (s *FileStore) SaveIdentity(identity *Identity) bool {
	if identity == nil {
		return false
	}

	data, err := json.Marshal(identity)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal identity failed")
		return false
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.log.Error().Err(err).Msg("create identity dir failed")
		return false
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.log.Error().Err(err).Msg("write identity failed")
		return false
	}
	return true
}

func (s *FileStore) Identity() *Identity {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Msg("read identity failed")
		}
		return nil
	}

	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		// A corrupt blob is the same as no identity.
		s.log.Warn().Err(err).Msg("parse identity failed")
		return nil
	}
	if identity.ID == "" {
		return nil
	}
	return &identity
}

func (s *FileStore) IsAuthenticated() bool {
	return s.Identity() != nil
}

func (s *FileStore) ClearIdentity() bool {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn().Err(err).Msg("clear identity failed")
		return false
	}
	return true
}

// MemoryStore is an in-memory Store for tests and embedded callers.
type MemoryStore struct {
	mu       sync.RWMutex
	identity *Identity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveIdentity(identity *Identity) bool {
	if identity == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *identity
	s.identity = &copied
	return true
}

func (s *MemoryStore) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	copied := *s.identity
	return &copied
}

func (s *MemoryStore) IsAuthenticated() bool {
	return s.Identity() != nil
}

func (s *MemoryStore) ClearIdentity() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	return true
}
