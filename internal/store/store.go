// Package store holds the in-memory aggregated view of one user's
// transactions. It is an injected state container, not a global: the HTTP
// server and the actions service share a single instance wired in main.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/gateway"
	"github.com/work4inventions/financeInsight/internal/log"
)

// Snapshot is a point-in-time consistent view: the income/expense partitions
// plus totals derived from them. Totals are always recomputed from the
// partitions on refresh, never adjusted in place.
type Snapshot struct {
	UserID        string
	Income        []core.Transaction
	Expenses      []core.Transaction
	TotalIncome   core.Money
	TotalExpenses core.Money
	Balance       core.Money
	FetchedAt     time.Time
}

// RefreshError wraps a gateway failure during refresh. The store's held
// state is untouched when this is returned.
type RefreshError struct {
	UserID string
	Cause  error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh transactions for user %s: %v", e.UserID, e.Cause)
}

func (e *RefreshError) Unwrap() error { return e.Cause }

// Store caches the aggregated view for at most one user at a time. A refresh
// for a different user fully overwrites the previous one. Concurrent
// refreshes are last-writer-wins in lock acquisition order; there is no
// in-flight cancellation beyond the caller's context.
type Store struct {
	mu     sync.RWMutex
	lister gateway.Lister
	logger *log.Logger
	snap   Snapshot
}

func New(lister gateway.Lister, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		lister: lister,
		logger: logger.WithComponent(log.ComponentStore),
	}
}

// Refresh fetches the user's full collection, partitions it by type and
// replaces the held snapshot atomically. Records whose type is neither
// income nor expense are dropped and counted. On gateway error the held
// state is left unchanged and a *RefreshError is returned.
func (s *Store) Refresh(ctx context.Context, userID string) (Snapshot, error) {
	records, err := s.lister.ListAll(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Transaction fetch failed",
			log.FieldUserID, userID,
			log.FieldError, err.Error())
		return Snapshot{}, &RefreshError{UserID: userID, Cause: err}
	}

	var income, expenses []core.Transaction
	dropped := 0
	for _, r := range records {
		switch r.Type {
		case core.Income:
			income = append(income, r)
		case core.Expense:
			expenses = append(expenses, r)
		default:
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.WarnContext(ctx, "Dropped records with unknown type",
			log.FieldUserID, userID,
			"dropped", dropped)
	}

	next := Snapshot{
		UserID:        userID,
		Income:        income,
		Expenses:      expenses,
		TotalIncome:   sum(income),
		TotalExpenses: sum(expenses),
		FetchedAt:     time.Now(),
	}
	next.Balance = core.Money{Cents: next.TotalIncome.Cents - next.TotalExpenses.Cents}

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Snapshot replaced",
		log.FieldUserID, userID,
		"income_count", len(income),
		"expense_count", len(expenses),
		"balance_cents", next.Balance.Cents)

	return next.clone(), nil
}

// Snapshot returns a consistent copy of the current state. The slices are
// copied so callers can sort and slice freely.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// All returns the merged income+expense list from the current snapshot,
// used by the tabular view.
func (s *Store) All() []core.Transaction {
	snap := s.Snapshot()
	all := make([]core.Transaction, 0, len(snap.Income)+len(snap.Expenses))
	all = append(all, snap.Income...)
	all = append(all, snap.Expenses...)
	return all
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Income = make([]core.Transaction, len(s.Income))
	copy(out.Income, s.Income)
	out.Expenses = make([]core.Transaction, len(s.Expenses))
	copy(out.Expenses, s.Expenses)
	return out
}

func sum(txs []core.Transaction) core.Money {
	var cents int64
	for _, t := range txs {
		cents += t.Amount.Cents
	}
	return core.Money{Cents: cents}
}
