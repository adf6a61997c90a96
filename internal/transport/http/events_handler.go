package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/list_sync_failures"
)

// Event represents an outbox event in the HTTP response.
type Event struct {
	EventID     string          `json:"eventId"`
	EventType   string          `json:"eventType"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"createdAt"`
	ProcessedAt *string         `json:"processedAt,omitempty"`
}

// ListEventsResponse represents the HTTP response for listing events.
type ListEventsResponse struct {
	Events     []Event `json:"events"`
	TotalCount int     `json:"totalCount"`
}

// ListSyncFailures handles GET /admin/maintenance/sync-failures.
func (h *Handler) ListSyncFailures(c *gin.Context) {
	var q syncFailuresQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	events, err := h.queries.ListSyncFailures.Execute(c.Request.Context(), &list_sync_failures.Request{
		IncludeResolved: q.IncludeResolved,
		Limit:           q.Limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := ListEventsResponse{Events: make([]Event, 0, len(events)), TotalCount: len(events)}
	for _, e := range events {
		resp.Events = append(resp.Events, toEvent(e))
	}
	c.JSON(http.StatusOK, resp)
}

func toEvent(e *contracts.OutboxEvent) Event {
	event := Event{
		EventID:     e.EventID,
		EventType:   e.EventType,
		AggregateID: e.AggregateID,
		Payload:     json.RawMessage(e.Payload),
		Status:      e.Status,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !json.Valid(event.Payload) {
		quoted, _ := json.Marshal(e.Payload)
		event.Payload = quoted
	}
	if e.ProcessedAt != nil {
		processedAt := e.ProcessedAt.UTC().Format(time.RFC3339)
		event.ProcessedAt = &processedAt
	}
	return event
}
