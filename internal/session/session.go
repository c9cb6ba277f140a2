// Package session holds the signed-in user's bearer token. It is passed to
// whatever needs it rather than read from a global.
package session

import (
	"errors"
	"fmt"
	"sync"
)

const (
	keyToken = "token"
	keyEmail = "email"
)

// Session is safe for use from the UI loop and from in-flight requests.
type Session struct {
	mu    sync.RWMutex
	store *Store
	token string
	email string
}

// Load restores whatever token the store holds. A missing token yields a
// signed-out session.
func Load(store *Store) (*Session, error) {
	s := &Session{store: store}

	token, err := store.Get(keyToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	email, err := store.Get(keyEmail)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to load email: %w", err)
	}

	s.token = token
	s.email = email
	return s, nil
}

func (s *Session) SignIn(email, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := s.store.Set(keyToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if err := s.store.Set(keyEmail, email); err != nil {
		return fmt.Errorf("failed to save email: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.email = email
	s.mu.Unlock()
	return nil
}

// SignOut forgets the token in memory first, so callers are signed out even
// if the store write fails.
func (s *Session) SignOut() error {
	s.mu.Lock()
	s.token = ""
	s.email = ""
	s.mu.Unlock()

	if err := s.store.Delete(keyToken, keyEmail); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}
