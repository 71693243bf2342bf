package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kopimakmur/internal/core"
)

// EventType names a ledger mutation.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// TransactionSnapshot is the wire form of a transaction.
type TransactionSnapshot struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Unit        string `json:"unit,omitempty"`
	OwnerID     int64  `json:"owner_id"`
}

// LedgerEvent announces a committed change to the transaction ledger.
// Deleted events carry no snapshot.
type LedgerEvent struct {
	EventID       string               `json:"event_id"`
	Type          EventType            `json:"type"`
	TransactionID int64                `json:"transaction_id"`
	Transaction   *TransactionSnapshot `json:"transaction,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func NewSnapshot(tx core.Transaction) *TransactionSnapshot {
	return &TransactionSnapshot{
		ID:          tx.ID,
		Date:        tx.Date.String(),
		Kind:        string(tx.Kind),
		Category:    tx.Category,
		Description: tx.Description,
		Amount:      tx.Amount.Rupiah,
		Unit:        tx.Unit,
		OwnerID:     tx.OwnerID,
	}
}

// NewLedgerEvent creates an event with a fresh id.
func NewLedgerEvent(t EventType, tx core.Transaction) *LedgerEvent {
	ev := &LedgerEvent{
		EventID:       uuid.NewString(),
		Type:          t,
		TransactionID: tx.ID,
		OccurredAt:    time.Now().UTC(),
	}
	if t != EventDeleted {
		ev.Transaction = NewSnapshot(tx)
	}
	return ev
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks an event.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(ev.EventID); err != nil {
		return nil, fmt.Errorf("invalid event id: %w", err)
	}
	switch ev.Type {
	case EventCreated, EventUpdated:
		if ev.Transaction == nil {
			return nil, fmt.Errorf("%s event without transaction", ev.Type)
		}
		if _, err := ev.Transaction.ToTransaction(); err != nil {
			return nil, fmt.Errorf("invalid transaction snapshot: %w", err)
		}
		if ev.Transaction.ID != ev.TransactionID {
			return nil, fmt.Errorf("snapshot id %d does not match transaction id %d", ev.Transaction.ID, ev.TransactionID)
		}
	case EventDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.TransactionID <= 0 {
		return nil, fmt.Errorf("invalid transaction id %d", ev.TransactionID)
	}
	return &ev, nil
}

// ToTransaction converts the snapshot back into a domain value.
func (s *TransactionSnapshot) ToTransaction() (core.Transaction, error) {
	d, err := core.ParseDate(s.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          s.ID,
		Date:        d,
		Kind:        core.Kind(s.Kind),
		Category:    s.Category,
		Description: s.Description,
		Amount:      core.Money{Rupiah: s.Amount},
		Unit:        s.Unit,
		OwnerID:     s.OwnerID,
	}, nil
}
