package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/gateway"
)

func sample() core.Transaction {
	return core.Transaction{
		Type:   core.Expense,
		Name:   "Movie",
		Amount: core.Money{Cents: 50000},
		Date:   core.NewDate(2024, 3, 1),
		Tag:    "Food",
	}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, err := s.Create(ctx, "u1", sample())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id2, err := s.Create(ctx, "u1", sample())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id1 == "" || id2 == "" || id1 == id2 {
		t.Errorf("ids not unique: %q %q", id1, id2)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := New()
	bad := sample()
	bad.Name = ""
	if _, err := s.Create(context.Background(), "u1", bad); err == nil {
		t.Error("expected validation error")
	}
}

func TestUserPartitionsAreIsolated(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Create(ctx, "alice", sample()); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListAll(ctx, "bob")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("bob sees %d of alice's records", len(got))
	}
}

func TestUpdatePartialFields(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, _ := s.Create(ctx, "u1", sample())

	name := "Cinema"
	if err := s.Update(ctx, "u1", id, core.UpdateFields{Name: &name}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	recs, _ := s.ListAll(ctx, "u1")
	if recs[0].Name != "Cinema" {
		t.Errorf("name = %q, want Cinema", recs[0].Name)
	}
	if recs[0].Amount.Cents != 50000 {
		t.Errorf("amount changed by name-only update: %d", recs[0].Amount.Cents)
	}

	if err := s.Update(ctx, "u1", "missing", core.UpdateFields{Name: &name}); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("update missing id = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, _ := s.Create(ctx, "u1", sample())
	if err := s.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	recs, _ := s.ListAll(ctx, "u1")
	if len(recs) != 0 {
		t.Errorf("record survived delete")
	}
	if err := s.Delete(ctx, "u1", id); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestAvatarRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SetAvatarURL(ctx, "u1", "/blobs/u1/avatar.png"); err != nil {
		t.Fatal(err)
	}
	url, err := s.AvatarURL(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if url != "/blobs/u1/avatar.png" {
		t.Errorf("avatar url = %q", url)
	}
}
