package testutil

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/countagg"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/repo/memstore"
	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
)

// Harness wires an in-memory store to the count aggregate writer.
type Harness struct {
	Store  *memstore.Store
	Clock  *clock.MockClock
	Writer *countagg.Writer
	Log    *logrus.Logger
	Hook   *logtest.Hook
}

// NewHarness creates a Harness with a stepping clock and a recording logger.
func NewHarness() *Harness {
	log, hook := logtest.NewNullLogger()
	clk := NewMockClock()
	return &Harness{
		Store:  memstore.New(),
		Clock:  clk,
		Writer: countagg.NewWriter(countagg.NewAggregate(log), clk, log),
		Log:    log,
		Hook:   hook,
	}
}

// Count reads the stored total for status.
func (h *Harness) Count(t *testing.T, status domain.ProductStatus) int64 {
	t.Helper()
	n, err := h.Store.CountNamespace(context.Background(), domain.CountNamespace(status))
	require.NoError(t, err)
	return n
}

// TotalCount sums the stored totals of every status.
func (h *Harness) TotalCount(t *testing.T) int64 {
	t.Helper()
	var total int64
	for _, s := range domain.AllStatuses {
		total += h.Count(t, s)
	}
	return total
}

// Events lists outbox events of eventType, newest first.
func (h *Harness) Events(t *testing.T, eventType, status string) []*contracts.OutboxEvent {
	t.Helper()
	events, err := h.Store.ListEvents(context.Background(), contracts.EventFilter{EventType: eventType, Status: status})
	require.NoError(t, err)
	return events
}

// FailCounter makes every counter operation named op fail with err.
func (h *Harness) FailCounter(op string, err error) {
	h.Store.InjectCounterFault(func(got string, _ domain.CountKey) error {
		if got == op {
			return err
		}
		return nil
	})
}

// Product loads a product straight from the store.
func (h *Harness) Product(t *testing.T, id string) *domain.Product {
	t.Helper()
	p, err := h.Store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p
}
