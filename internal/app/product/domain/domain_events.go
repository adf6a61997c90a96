package domain

import "time"

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// ProductCreatedEvent is emitted when a product is created.
type ProductCreatedEvent struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Status      string    `json:"status"`
	ProductType string    `json:"product_type"`
	CategoryID  *string   `json:"category_id,omitempty"`
	BasePrice   int64     `json:"base_price"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *ProductCreatedEvent) EventType() string {
	return "product.created"
}

func (e *ProductCreatedEvent) AggregateID() string {
	return e.ProductID
}

// ProductUpdatedEvent is emitted when product details are updated.
type ProductUpdatedEvent struct {
	ProductID string    `json:"product_id"`
	Fields    []string  `json:"fields"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *ProductUpdatedEvent) EventType() string {
	return "product.updated"
}

func (e *ProductUpdatedEvent) AggregateID() string {
	return e.ProductID
}

// ProductStatusChangedEvent is emitted on every status transition.
type ProductStatusChangedEvent struct {
	ProductID string    `json:"product_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *ProductStatusChangedEvent) EventType() string {
	return "product.status_changed"
}

func (e *ProductStatusChangedEvent) AggregateID() string {
	return e.ProductID
}

// ProductDeletedEvent is emitted when a product is hard deleted.
type ProductDeletedEvent struct {
	ProductID string    `json:"product_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *ProductDeletedEvent) EventType() string {
	return "product.deleted"
}

func (e *ProductDeletedEvent) AggregateID() string {
	return e.ProductID
}

// CountSyncFailedEvent records a count aggregate update that could not be
// applied. Backfill resolves these.
type CountSyncFailedEvent struct {
	ProductID string    `json:"product_id"`
	Op        string    `json:"op"`
	Namespace string    `json:"namespace"`
	SortKey   time.Time `json:"sort_key"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// EventTypeCountSyncFailed is the outbox event type for CountSyncFailedEvent.
const EventTypeCountSyncFailed = "count_aggregate.sync_failed"

func (e *CountSyncFailedEvent) EventType() string {
	return EventTypeCountSyncFailed
}

func (e *CountSyncFailedEvent) AggregateID() string {
	return e.ProductID
}
