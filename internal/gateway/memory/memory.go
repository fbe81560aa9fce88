// Package memory is an in-process gateway backend used by tests and local
// development. It mirrors the semantics of the persistent backends: opaque
// ids assigned on create, per-user partitions, partial updates.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/gateway"
)

type Store struct {
	mu      sync.Mutex
	records map[string][]core.Transaction // userID -> records
	avatars map[string]string

	// FailListAll, when set, makes ListAll return this error. Lets tests
	// exercise the store's unchanged-state-on-error contract.
	FailListAll error
}

func New() *Store {
	return &Store{
		records: make(map[string][]core.Transaction),
		avatars: make(map[string]string),
	}
}

// ListAll returns a copy of the user's full collection.
func (s *Store) ListAll(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailListAll != nil {
		return nil, s.FailListAll
	}
	out := make([]core.Transaction, len(s.records[userID]))
	copy(out, s.records[userID])
	return out, nil
}

// Create stores the transaction and returns the assigned id.
func (s *Store) Create(_ context.Context, userID string, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	s.records[userID] = append(s.records[userID], t)
	return t.ID, nil
}

func (s *Store) Update(_ context.Context, userID, id string, fields core.UpdateFields) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.records[userID]
	for i := range recs {
		if recs[i].ID != id {
			continue
		}
		if fields.Name != nil {
			recs[i].Name = *fields.Name
		}
		if fields.Amount != nil {
			recs[i].Amount = *fields.Amount
		}
		return nil
	}
	return gateway.ErrNotFound
}

func (s *Store) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.records[userID]
	for i := range recs {
		if recs[i].ID == id {
			s.records[userID] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

func (s *Store) SetAvatarURL(_ context.Context, userID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avatars[userID] = url
	return nil
}

func (s *Store) AvatarURL(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avatars[userID], nil
}
