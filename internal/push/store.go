// Package push implements the relay that remembers device tokens and
// forwards notifications to the push provider.
package push

import (
	"sync"
)

// TokenStore keeps the latest device token per user in memory. Tokens are
// lost on restart.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]string)}
}

// Save replaces any token previously stored for the user.
func (s *TokenStore) Save(userID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
}

func (s *TokenStore) Get(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[userID]
	return token, ok
}

func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
