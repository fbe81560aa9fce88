package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/work4inventions/financeInsight/internal/cache"
)

// Sessions maps opaque cookie tokens to identities. Lookups slide the
// expiry forward, so a session stays alive while it is being used.
type Sessions struct {
	store *cache.LRU[Identity]
}

func NewSessions(maxSize int, ttl time.Duration) *Sessions {
	return &Sessions{store: cache.NewLRU[Identity](maxSize, ttl)}
}

// Start registers the identity and returns a fresh token.
func (s *Sessions) Start(id Identity) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	s.store.Set(token, id)
	return token, nil
}

// Lookup resolves a token and extends its expiry.
func (s *Sessions) Lookup(token string) (Identity, bool) {
	id, ok := s.store.Get(token)
	if !ok {
		return Identity{}, false
	}
	s.store.Touch(token)
	return id, true
}

// End invalidates the token.
func (s *Sessions) End(token string) {
	s.store.Delete(token)
}

// CleanExpired implements cache.Cleaner.
func (s *Sessions) CleanExpired() int {
	return s.store.CleanExpired()
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
