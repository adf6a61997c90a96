package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// Outbox event statuses.
const (
	OutboxPending   = "pending"
	OutboxCompleted = "completed"
)

// OutboxEvent represents an enriched domain event ready for persistence.
type OutboxEvent struct {
	EventID     string
	EventType   string
	AggregateID string
	Payload     string // JSON
	Status      string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewOutboxEvent converts a domain event to a pending outbox event.
func NewOutboxEvent(event domain.DomainEvent) (*OutboxEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event: %w", err)
	}
	return &OutboxEvent{
		EventID:     uuid.NewString(),
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		Payload:     string(payload),
		Status:      OutboxPending,
	}, nil
}

// OutboxStore writes outbox events inside a transaction.
type OutboxStore interface {
	Insert(ctx context.Context, event *OutboxEvent) error
	MarkCompleted(ctx context.Context, eventIDs []string) error
}

// EventFilter selects outbox events. Empty fields match everything.
type EventFilter struct {
	EventType string
	Status    string
	Limit     int
}

// OutboxReader lists outbox events, newest first.
type OutboxReader interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]*OutboxEvent, error)
}

// AppendEvents writes each domain event to the outbox in the caller's transaction.
func AppendEvents(ctx context.Context, outbox OutboxStore, events []domain.DomainEvent) error {
	for _, event := range events {
		e, err := NewOutboxEvent(event)
		if err != nil {
			return err
		}
		if err := outbox.Insert(ctx, e); err != nil {
			return fmt.Errorf("failed to insert outbox event: %w", err)
		}
	}
	return nil
}
