package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// User is the profile of the currently signed-in user.
type User struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

type fileState struct {
	AuthToken   string `json:"authToken,omitempty"`
	CurrentUser *User  `json:"currentUser,omitempty"`
}

// Store holds the auth token and current-user profile. It is written only by
// the login/logout flow; cart and order components read it.
type Store struct {
	mu    sync.RWMutex
	token string
	user  *User
	path  string // empty means in-memory only
}

func NewStore() *Store {
	return &Store{}
}

// NewFileStore loads session state from path if it exists. A missing file is
// an empty session, not an error.
func NewFileStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	s.token = state.AuthToken
	s.user = state.CurrentUser
	return s, nil
}

// Token returns the auth token, empty when no user is signed in.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user profile, nil when absent.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return s.save()
}

func (s *Store) SetUser(u User) error {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return s.save()
}

// Clear drops the token and profile, the logout action.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.save()
}

func (s *Store) save() error {
	s.mu.RLock()
	state := fileState{AuthToken: s.token, CurrentUser: s.user}
	path := s.path
	s.mu.RUnlock()

	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
