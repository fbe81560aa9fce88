package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/work4inventions/financeInsight/internal/amqp"
	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/export"
	"github.com/work4inventions/financeInsight/internal/gateway"
	"github.com/work4inventions/financeInsight/internal/log"
	"github.com/work4inventions/financeInsight/internal/storage"
)

type fakeSource struct {
	records  map[string]core.Transaction // id -> record
	pending  []storage.PendingExport
	exported []string
}

func (f *fakeSource) Get(_ context.Context, userID, id string) (core.Transaction, error) {
	t, ok := f.records[id]
	if !ok {
		return core.Transaction{}, gateway.ErrNotFound
	}
	return t, nil
}

func (f *fakeSource) ListPendingExport(_ context.Context, limit int) ([]storage.PendingExport, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeSource) MarkExported(_ context.Context, userID, id string) error {
	f.exported = append(f.exported, id)
	return nil
}

type fakeExporter struct {
	entries []export.LedgerEntry
	fail    error
}

func (f *fakeExporter) Export(_ context.Context, entry export.LedgerEntry) error {
	if f.fail != nil {
		return f.fail
	}
	f.entries = append(f.entries, entry)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

func TestHandleEventExportsAndMarks(t *testing.T) {
	tx := core.Transaction{
		ID:     "t1",
		Type:   core.Expense,
		Name:   "Movie",
		Amount: core.Money{Cents: 50000},
		Date:   core.NewDate(2024, 3, 1),
		Tag:    "Food",
	}
	source := &fakeSource{records: map[string]core.Transaction{"t1": tx}}
	exporter := &fakeExporter{}
	w := NewExportWorker(source, exporter, testLogger(), 10)

	ev := amqp.NewTransactionEvent(amqp.EventCreated, "u1", "t1")
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(exporter.entries) != 1 {
		t.Fatalf("exported %d entries, want 1", len(exporter.entries))
	}
	entry := exporter.entries[0]
	if entry.UserID != "u1" || entry.Transaction.ID != "t1" || entry.Deleted {
		t.Errorf("entry = %+v", entry)
	}
	if len(source.exported) != 1 || source.exported[0] != "t1" {
		t.Errorf("marked exported = %v", source.exported)
	}
}

func TestHandleEventDeletion(t *testing.T) {
	source := &fakeSource{records: map[string]core.Transaction{}}
	exporter := &fakeExporter{}
	w := NewExportWorker(source, exporter, testLogger(), 10)

	ev := amqp.NewTransactionEvent(amqp.EventDeleted, "u1", "t1")
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(exporter.entries) != 1 || !exporter.entries[0].Deleted {
		t.Fatalf("entries = %+v, want one deletion", exporter.entries)
	}
	if len(source.exported) != 0 {
		t.Errorf("deletion must not mark rows exported: %v", source.exported)
	}
}

func TestHandleEventMissingRecordIsDropped(t *testing.T) {
	source := &fakeSource{records: map[string]core.Transaction{}}
	exporter := &fakeExporter{}
	w := NewExportWorker(source, exporter, testLogger(), 10)

	ev := amqp.NewTransactionEvent(amqp.EventUpdated, "u1", "gone")
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Errorf("missing record should not requeue, got %v", err)
	}
	if len(exporter.entries) != 0 {
		t.Errorf("exported %d entries for a missing record", len(exporter.entries))
	}
}

func TestHandleEventExportFailureRequeues(t *testing.T) {
	tx := core.Transaction{
		ID: "t1", Type: core.Expense, Name: "Movie",
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 1, 1), Tag: "Food",
	}
	source := &fakeSource{records: map[string]core.Transaction{"t1": tx}}
	exporter := &fakeExporter{fail: errors.New("sheets down")}
	w := NewExportWorker(source, exporter, testLogger(), 10)

	ev := amqp.NewTransactionEvent(amqp.EventCreated, "u1", "t1")
	if err := w.HandleEvent(context.Background(), ev); err == nil {
		t.Error("expected error so the message requeues")
	}
	if len(source.exported) != 0 {
		t.Errorf("marked exported despite failure: %v", source.exported)
	}
}

func TestProcessPendingSweepsBatch(t *testing.T) {
	tx1 := core.Transaction{ID: "t1", Type: core.Income, Name: "Salary", Amount: core.Money{Cents: 500000}, Date: core.NewDate(2024, 1, 31), Tag: "Others"}
	tx2 := core.Transaction{ID: "t2", Type: core.Expense, Name: "Rent", Amount: core.Money{Cents: 120000}, Date: core.NewDate(2024, 2, 1), Tag: "Others"}
	source := &fakeSource{
		records: map[string]core.Transaction{"t1": tx1, "t2": tx2},
		pending: []storage.PendingExport{
			{UserID: "u1", TransactionID: "t1"},
			{UserID: "u1", TransactionID: "t2"},
		},
	}
	exporter := &fakeExporter{}
	w := NewExportWorker(source, exporter, testLogger(), 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if len(exporter.entries) != 2 {
		t.Errorf("exported %d entries, want 2", len(exporter.entries))
	}
	if len(source.exported) != 2 {
		t.Errorf("marked %d rows, want 2", len(source.exported))
	}
}
