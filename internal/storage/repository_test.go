package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/gateway"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sample() core.Transaction {
	return core.Transaction{
		Type:   core.Expense,
		Name:   "Movie",
		Amount: core.Money{Cents: 50000},
		Date:   core.NewDate(2024, 3, 1),
		Tag:    "Food",
	}
}

func TestCreateAndListRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, "u1", sample())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("empty id")
	}

	got, err := repo.ListAll(ctx, "u1")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	tx := got[0]
	if tx.ID != id || tx.Type != core.Expense || tx.Name != "Movie" ||
		tx.Amount.Cents != 50000 || tx.Date.ISO() != "2024-03-01" || tx.Tag != "Food" {
		t.Errorf("round trip mismatch: %+v", tx)
	}
}

func TestListAllIsPartitionedByUser(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "alice", sample()); err != nil {
		t.Fatal(err)
	}
	got, err := repo.ListAll(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("bob sees alice's rows: %+v", got)
	}
}

func TestUpdatePartial(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, _ := repo.Create(ctx, "u1", sample())

	amount := core.Money{Cents: 60000}
	if err := repo.Update(ctx, "u1", id, core.UpdateFields{Amount: &amount}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	tx, err := repo.Get(ctx, "u1", id)
	if err != nil {
		t.Fatal(err)
	}
	if tx.Amount.Cents != 60000 {
		t.Errorf("amount = %d, want 60000", tx.Amount.Cents)
	}
	if tx.Name != "Movie" {
		t.Errorf("name changed by amount-only update: %q", tx.Name)
	}

	if err := repo.Update(ctx, "u1", "missing", core.UpdateFields{Amount: &amount}); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("update of missing row = %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, "other", id, core.UpdateFields{Amount: &amount}); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("cross-user update = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, _ := repo.Create(ctx, "u1", sample())
	if err := repo.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "u1", id); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "u1", id); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestExportQueue(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, _ := repo.Create(ctx, "u1", sample())

	pending, err := repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].TransactionID != id {
		t.Fatalf("pending = %+v, want the new row", pending)
	}

	if err := repo.MarkExported(ctx, "u1", id); err != nil {
		t.Fatal(err)
	}
	pending, err = repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("row still pending after MarkExported")
	}

	// A mutation re-queues the row
	amount := core.Money{Cents: 700}
	if err := repo.Update(ctx, "u1", id, core.UpdateFields{Amount: &amount}); err != nil {
		t.Fatal(err)
	}
	pending, err = repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Errorf("updated row not re-queued for export")
	}
}

func TestAvatarRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	url, err := repo.AvatarURL(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if url != "" {
		t.Errorf("avatar for unknown user = %q, want empty", url)
	}

	if err := repo.SetAvatarURL(ctx, "u1", "/blobs/u1/a.png"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetAvatarURL(ctx, "u1", "/blobs/u1/b.png"); err != nil {
		t.Fatal(err)
	}
	url, err = repo.AvatarURL(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if url != "/blobs/u1/b.png" {
		t.Errorf("avatar url = %q, want latest", url)
	}
}
