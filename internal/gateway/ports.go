// Package gateway defines the ports to the remote transaction collection.
// Every operation is keyed by an opaque user id; a caller can only reach its
// own partition of the collection.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/work4inventions/financeInsight/internal/core"
)

var ErrNotFound = errors.New("transaction not found")

type (
	// Lister returns the full collection for one user. No pagination: the
	// aggregation store always works from a complete snapshot.
	Lister interface {
		ListAll(ctx context.Context, userID string) ([]core.Transaction, error)
	}

	Creator interface {
		// Create persists a new transaction and returns the assigned id.
		Create(ctx context.Context, userID string, t core.Transaction) (id string, err error)
	}

	Updater interface {
		// Update applies a partial update (name and/or amount) to one record.
		Update(ctx context.Context, userID, id string, fields core.UpdateFields) error
	}

	Deleter interface {
		// Delete removes a single record by id.
		Delete(ctx context.Context, userID, id string) error
	}

	// ProfileStore keeps the per-user profile document (currently just the
	// avatar URL written by the profile-picture flow).
	ProfileStore interface {
		SetAvatarURL(ctx context.Context, userID, url string) error
		AvatarURL(ctx context.Context, userID string) (string, error)
	}
)

// DecodeError reports a stored document that does not match the transaction
// schema. Malformed documents are rejected at the gateway boundary instead of
// being passed through shape-unchecked.
type DecodeError struct {
	ID    string
	Field string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode transaction %s: field %q: %v", e.ID, e.Field, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }
