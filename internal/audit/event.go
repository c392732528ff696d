// Package audit records ledger events (register opened, transaction recorded, ...)
// asynchronously, so a slow or failing sink never blocks a money operation.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the ledger.
const (
	RegisterOpened     = "register.opened"
	RegisterClosed     = "register.closed"
	TransactionCreated = "transaction.recorded"
	TransactionUpdated = "transaction.updated"
	TransactionVoided  = "transaction.voided"
	DebtCreated        = "debt.created"
	DebtPaymentApplied = "debt.payment_applied"
	DebtDeleted        = "debt.deleted"
)

type Event struct {
	ID        uuid.UUID         `json:"id,omitempty"`
	Type      string            `json:"event_type,omitempty"`
	Data      any               `json:"event_data,omitempty"`
	Metadata  map[string]string `json:"event_metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type EventOption func(*Event)

func WithType(eventType string) EventOption {
	return func(e *Event) {
		e.Type = eventType
	}
}

func WithData(data any) EventOption {
	return func(e *Event) {
		e.Data = data
	}
}

// WithMetadata merges metadata into the event.
func WithMetadata(metadata map[string]string) EventOption {
	return func(e *Event) {
		for k, v := range metadata {
			e.Metadata[k] = v
		}
	}
}

func NewEvent(opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Metadata:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Sink persists events.
type Sink interface {
	SaveEvent(ctx context.Context, e Event) error
}

// Logger accepts events for eventual persistence.
type Logger interface {
	Log(e Event)
}

// Discard is a Logger that drops every event.
var Discard Logger = discard{}

type discard struct{}

func (discard) Log(Event) {}
