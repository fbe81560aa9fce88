// Package export defines the ledger port the export worker writes through.
package export

import (
	"context"

	"github.com/work4inventions/financeInsight/internal/core"
)

// LedgerEntry is one transaction change bound for the external ledger.
type LedgerEntry struct {
	UserID      string
	Transaction core.Transaction
	// Deleted marks a removal. Transaction carries only the ID in that case.
	Deleted bool
}

// Exporter upserts one entry into the ledger. Implementations must be
// idempotent per transaction id so redelivered events are safe.
type Exporter interface {
	Export(ctx context.Context, entry LedgerEntry) error
}
