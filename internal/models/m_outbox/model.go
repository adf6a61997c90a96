package m_outbox

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the outbox_events table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation for inserting an outbox event.
// created_at is the commit timestamp.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns, []any{
		data.EventID,
		data.EventType,
		data.AggregateID,
		data.Payload,
		data.Status,
		spanner.CommitTimestamp,
		data.ProcessedAt,
	})
}

// CompleteMut marks an event completed at commit time.
func (m *Model) CompleteMut(eventID string) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{EventID, Status, ProcessedAt},
		[]any{eventID, StatusCompleted, spanner.CommitTimestamp},
	)
}
