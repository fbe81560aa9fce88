package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published after a successful mutation.
const (
	EventCreated = "transaction.created"
	EventUpdated = "transaction.updated"
	EventDeleted = "transaction.deleted"
)

// TransactionEvent is a lightweight mutation notification. It carries only
// the keys; the export worker fetches the full record from the gateway.
type TransactionEvent struct {
	Kind          string    `json:"kind"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(kind, userID, transactionID string) *TransactionEvent {
	return &TransactionEvent{
		Kind:          kind,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
