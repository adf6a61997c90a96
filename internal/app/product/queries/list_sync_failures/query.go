package list_sync_failures

import (
	"context"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// Request filters the recorded count aggregate sync failures.
type Request struct {
	IncludeResolved bool
	Limit           int // Max number of events to return (default: 100)
}

// Query lists count_aggregate.sync_failed outbox events so operators can
// tell when backfill is due.
type Query struct {
	readModel contracts.OutboxReader
}

// NewQuery creates a new list sync failures query.
func NewQuery(readModel contracts.OutboxReader) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute lists failures newest first. Only pending ones unless IncludeResolved.
func (q *Query) Execute(ctx context.Context, req *Request) ([]*contracts.OutboxEvent, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 100 // Default limit
	}
	if limit > 1000 {
		limit = 1000 // Max limit
	}

	filter := contracts.EventFilter{
		EventType: domain.EventTypeCountSyncFailed,
		Status:    contracts.OutboxPending,
		Limit:     limit,
	}
	if req.IncludeResolved {
		filter.Status = ""
	}
	return q.readModel.ListEvents(ctx, filter)
}
