// Package actions implements the single-record mutations: add, update and
// delete against the collection gateway. Mutations are decoupled from the
// aggregation store for the write itself; after a successful write the store
// is refreshed in full rather than patched locally, so derived totals can
// never drift from the backing collection.
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/work4inventions/financeInsight/internal/amqp"
	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/gateway"
	"github.com/work4inventions/financeInsight/internal/log"
	"github.com/work4inventions/financeInsight/internal/store"
)

// Kind classifies an action failure for the HTTP layer's notification copy.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindGateway    Kind = "gateway"
)

// Error is the only error type that leaves the action boundary.
type Error struct {
	Op    string
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// EventPublisher is satisfied by the AMQP client; nil disables publishing.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// Gateway bundles the mutation ports the service needs.
type Gateway interface {
	gateway.Creator
	gateway.Updater
	gateway.Deleter
}

type Service struct {
	gw        Gateway
	store     *store.Store
	publisher EventPublisher
	logger    *log.Logger
}

func NewService(gw Gateway, st *store.Store, publisher EventPublisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Service{
		gw:        gw,
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentActions),
	}
}

// Add validates and persists a new transaction, then refreshes the store so
// the snapshot includes it. No optimistic local insertion. Returns the
// assigned id.
func (s *Service) Add(ctx context.Context, userID string, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", &Error{Op: "add transaction", Kind: KindValidation, Cause: err}
	}

	id, err := s.gw.Create(ctx, userID, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "Transaction create failed",
			log.FieldUserID, userID,
			log.FieldName, t.Name,
			log.FieldError, err.Error())
		return "", &Error{Op: "add transaction", Kind: KindGateway, Cause: err}
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldUserID, userID,
		log.FieldTransactionID, id,
		log.FieldTransactionType, string(t.Type),
		log.FieldAmountCents, t.Amount.Cents,
		log.FieldTag, t.Tag)

	s.publish(ctx, amqp.EventCreated, userID, id)
	s.refresh(ctx, userID)
	return id, nil
}

// Update applies a partial update (name and/or amount) to one record, then
// refreshes the store so update shares the add path's contract.
func (s *Service) Update(ctx context.Context, userID, id string, fields core.UpdateFields) error {
	if err := fields.Validate(); err != nil {
		return &Error{Op: "update transaction", Kind: KindValidation, Cause: err}
	}

	if err := s.gw.Update(ctx, userID, id, fields); err != nil {
		kind := KindGateway
		if errors.Is(err, gateway.ErrNotFound) {
			kind = KindNotFound
		}
		s.logger.ErrorContext(ctx, "Transaction update failed",
			log.FieldUserID, userID,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
		return &Error{Op: "update transaction", Kind: kind, Cause: err}
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldUserID, userID,
		log.FieldTransactionID, id)

	s.publish(ctx, amqp.EventUpdated, userID, id)
	s.refresh(ctx, userID)
	return nil
}

// Delete removes a single record by id, then refreshes the store.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.gw.Delete(ctx, userID, id); err != nil {
		kind := KindGateway
		if errors.Is(err, gateway.ErrNotFound) {
			kind = KindNotFound
		}
		s.logger.ErrorContext(ctx, "Transaction delete failed",
			log.FieldUserID, userID,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
		return &Error{Op: "delete transaction", Kind: kind, Cause: err}
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldUserID, userID,
		log.FieldTransactionID, id)

	s.publish(ctx, amqp.EventDeleted, userID, id)
	s.refresh(ctx, userID)
	return nil
}

// publish is best effort: the mutation already succeeded, a lost event only
// delays the export worker until its periodic catch-up.
func (s *Service) publish(ctx context.Context, kind, userID, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(kind, userID, id)); err != nil {
		s.logger.WarnContext(ctx, "Event publish failed",
			"kind", kind,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
	}
}

// refresh is best effort as well: the write landed, so a failed re-fetch
// leaves the previous snapshot in place and the next page load retries.
func (s *Service) refresh(ctx context.Context, userID string) {
	if s.store == nil {
		return
	}
	if _, err := s.store.Refresh(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "Post-mutation refresh failed",
			log.FieldUserID, userID,
			log.FieldError, err.Error())
	}
}
