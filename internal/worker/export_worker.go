// Package worker drives the ledger export pipeline: AMQP mutation events
// are the fast path, a periodic pending-row sweep recovers anything a lost
// message left behind.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/work4inventions/financeInsight/internal/amqp"
	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/export"
	"github.com/work4inventions/financeInsight/internal/gateway"
	"github.com/work4inventions/financeInsight/internal/log"
	"github.com/work4inventions/financeInsight/internal/storage"
)

// ExportSource is the slice of the SQLite repository the worker reads.
type ExportSource interface {
	Get(ctx context.Context, userID, id string) (core.Transaction, error)
	ListPendingExport(ctx context.Context, limit int) ([]storage.PendingExport, error)
	MarkExported(ctx context.Context, userID, id string) error
}

type ExportWorker struct {
	source    ExportSource
	exporter  export.Exporter
	logger    *log.Logger
	batchSize int
}

func NewExportWorker(source ExportSource, exporter export.Exporter, logger *log.Logger, batchSize int) *ExportWorker {
	return &ExportWorker{
		source:    source,
		exporter:  exporter,
		logger:    logger.WithComponent(log.ComponentWorker),
		batchSize: batchSize,
	}
}

// HandleEvent processes one mutation event. A returned error requeues the
// message, so transient export failures retry.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		"kind", ev.Kind,
		log.FieldUserID, ev.UserID,
		log.FieldTransactionID, ev.TransactionID)

	if ev.Kind == amqp.EventDeleted {
		entry := export.LedgerEntry{
			UserID:      ev.UserID,
			Transaction: core.Transaction{ID: ev.TransactionID},
			Deleted:     true,
		}
		if err := w.exporter.Export(ctx, entry); err != nil {
			return fmt.Errorf("export deletion: %w", err)
		}
		return nil
	}

	return w.exportOne(ctx, ev.UserID, ev.TransactionID)
}

// ProcessPending sweeps rows the event path missed.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.source.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending export: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "Processing pending export rows", "count", len(pending))

	for _, p := range pending {
		if err := w.exportOne(ctx, p.UserID, p.TransactionID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to export pending row",
				log.FieldTransactionID, p.TransactionID,
				log.FieldError, err)
		}
	}
	return nil
}

// Run sweeps pending rows until the context ends. The first sweep happens
// immediately so a restart catches up without waiting one interval.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.ProcessPending(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup export sweep failed", log.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Export sweep failed", log.FieldError, err)
			}
		}
	}
}

func (w *ExportWorker) exportOne(ctx context.Context, userID, id string) error {
	t, err := w.source.Get(ctx, userID, id)
	if errors.Is(err, gateway.ErrNotFound) {
		// Deleted between the event and now. The deletion event handles
		// the ledger side.
		w.logger.WarnContext(ctx, "Transaction gone before export",
			log.FieldTransactionID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction for export: %w", err)
	}

	entry := export.LedgerEntry{UserID: userID, Transaction: t}
	if err := w.exporter.Export(ctx, entry); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}

	if err := w.source.MarkExported(ctx, userID, id); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}

	w.logger.InfoContext(ctx, "Exported transaction to ledger",
		log.FieldUserID, userID,
		log.FieldTransactionID, id)
	return nil
}
