package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/models/m_outbox"
	"github.com/light-bringer/catalog-engine/internal/pkg/query"
)

// EventsReadModel lists outbox events for operators and backfill.
type EventsReadModel struct {
	client *spanner.Client
}

var _ contracts.OutboxReader = (*EventsReadModel)(nil)

// NewEventsReadModel creates a new EventsReadModel.
func NewEventsReadModel(client *spanner.Client) *EventsReadModel {
	return &EventsReadModel{
		client: client,
	}
}

// ListEvents retrieves events newest first. Empty filter fields match everything.
func (r *EventsReadModel) ListEvents(ctx context.Context, filter contracts.EventFilter) ([]*contracts.OutboxEvent, error) {
	b := query.From(m_outbox.TableName).Select(m_outbox.Columns...)
	if filter.EventType != "" {
		b = b.Where(query.Eq(m_outbox.EventType, filter.EventType))
	}
	if filter.Status != "" {
		b = b.Where(query.Eq(m_outbox.Status, filter.Status))
	}
	b = b.OrderBy(m_outbox.CreatedAt, query.Desc).OrderBy(m_outbox.EventID, query.Desc)
	if filter.Limit > 0 {
		b = b.Limit(int64(filter.Limit))
	}

	events, err := queryRows(ctx, r.client.Single(), b.Build(), decodeOutboxEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox events: %w", err)
	}
	return events, nil
}
