package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/work4inventions/financeInsight/internal/amqp"
	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/gateway/memory"
	"github.com/work4inventions/financeInsight/internal/store"
)

type recordingPublisher struct {
	events []*amqp.TransactionEvent
	fail   bool
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, e *amqp.TransactionEvent) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, e)
	return nil
}

func newService(t *testing.T) (*Service, *memory.Store, *store.Store, *recordingPublisher) {
	t.Helper()
	gw := memory.New()
	st := store.New(gw, nil)
	pub := &recordingPublisher{}
	return NewService(gw, st, pub, nil), gw, st, pub
}

func expense(name string, cents int64) core.Transaction {
	return core.Transaction{
		Type:   core.Expense,
		Name:   name,
		Amount: core.Money{Cents: cents},
		Date:   core.NewDate(2024, 3, 1),
		Tag:    "Food",
	}
}

func TestAddPersistsPublishesAndRefreshes(t *testing.T) {
	svc, _, st, pub := newService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, "u1", expense("Movie", 50000))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == "" {
		t.Error("empty id")
	}

	snap := st.Snapshot()
	if snap.TotalExpenses.Cents != 50000 {
		t.Errorf("store not refreshed after add: %+v", snap)
	}
	if snap.Balance.Cents != -50000 {
		t.Errorf("Balance = %d, want -50000", snap.Balance.Cents)
	}

	if len(pub.events) != 1 || pub.events[0].Kind != amqp.EventCreated {
		t.Errorf("events = %+v, want one created event", pub.events)
	}
}

func TestAddValidationFailsBeforeGateway(t *testing.T) {
	svc, gw, _, pub := newService(t)
	ctx := context.Background()

	bad := expense("Movie", 50000)
	bad.Amount = core.Money{} // invalid, as if "abc" failed to parse upstream

	_, err := svc.Add(ctx, "u1", bad)
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Kind != KindValidation {
		t.Fatalf("err = %v, want validation Error", err)
	}

	recs, _ := gw.ListAll(ctx, "u1")
	if len(recs) != 0 {
		t.Error("gateway was called despite validation failure")
	}
	if len(pub.events) != 0 {
		t.Error("event published despite validation failure")
	}
}

func TestUpdateRefreshesStore(t *testing.T) {
	svc, _, st, pub := newService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, "u1", expense("Movie", 50000))
	if err != nil {
		t.Fatal(err)
	}

	newAmount := core.Money{Cents: 60000}
	if err := svc.Update(ctx, "u1", id, core.UpdateFields{Amount: &newAmount}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got := st.Snapshot().TotalExpenses.Cents; got != 60000 {
		t.Errorf("TotalExpenses = %d after update, want 60000", got)
	}
	if last := pub.events[len(pub.events)-1]; last.Kind != amqp.EventUpdated {
		t.Errorf("last event = %q, want updated", last.Kind)
	}
}

func TestUpdateMissingRecordIsNotFound(t *testing.T) {
	svc, _, _, _ := newService(t)

	name := "x"
	err := svc.Update(context.Background(), "u1", "nope", core.UpdateFields{Name: &name})
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Kind != KindNotFound {
		t.Errorf("err = %v, want not_found Error", err)
	}
}

func TestDeleteRefreshesStore(t *testing.T) {
	svc, _, st, pub := newService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, "u1", expense("Movie", 50000))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := st.Snapshot().TotalExpenses.Cents; got != 0 {
		t.Errorf("TotalExpenses = %d after delete, want 0", got)
	}
	if last := pub.events[len(pub.events)-1]; last.Kind != amqp.EventDeleted {
		t.Errorf("last event = %q, want deleted", last.Kind)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	svc, _, st, pub := newService(t)
	pub.fail = true

	if _, err := svc.Add(context.Background(), "u1", expense("Movie", 50000)); err != nil {
		t.Errorf("Add failed on publish error: %v", err)
	}
	if got := st.Snapshot().TotalExpenses.Cents; got != 50000 {
		t.Errorf("store not refreshed: %d", got)
	}
}
