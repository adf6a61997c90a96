package m_outbox

// Field name constants for the outbox_events table.
const (
	TableName = "outbox_events"

	EventID     = "event_id"
	EventType   = "event_type"
	AggregateID = "aggregate_id"
	Payload     = "payload"
	Status      = "status"
	CreatedAt   = "created_at"
	ProcessedAt = "processed_at"

	IndexTypeStatus = "idx_outbox_type_status"
)

var Columns = []string{EventID, EventType, AggregateID, Payload, Status, CreatedAt, ProcessedAt}

// Event status constants
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)
