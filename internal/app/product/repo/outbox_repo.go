package repo

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/models/m_outbox"
)

// outboxStore writes outbox rows inside a spannerTx.
type outboxStore struct{ t *spannerTx }

func (o outboxStore) Insert(_ context.Context, event *contracts.OutboxEvent) error {
	data := &m_outbox.Data{
		EventID:     event.EventID,
		EventType:   event.EventType,
		AggregateID: event.AggregateID,
		Payload:     spanner.NullJSON{Value: json.RawMessage(event.Payload), Valid: event.Payload != ""},
		Status:      event.Status,
	}
	o.t.plan.Add(o.t.outboxEvents.InsertMut(data))
	return nil
}

func (o outboxStore) MarkCompleted(_ context.Context, eventIDs []string) error {
	for _, id := range eventIDs {
		o.t.plan.Add(o.t.outboxEvents.CompleteMut(id))
	}
	return nil
}
