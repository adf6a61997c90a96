package countagg

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
)

// Writer is the only path through which products are written. Each method
// performs the primary write and then the counter update in the same tx.
//
// A counter failure never fails the write: it is logged and recorded as a
// count_aggregate.sync_failed outbox event for backfill to resolve.
type Writer struct {
	agg   *Aggregate
	clock clock.Clock
	log   logrus.FieldLogger
}

// NewWriter creates a Writer.
func NewWriter(agg *Aggregate, clk clock.Clock, log logrus.FieldLogger) *Writer {
	return &Writer{agg: agg, clock: clk, log: log}
}

// Insert writes a new product and counts it.
func (w *Writer) Insert(ctx context.Context, tx contracts.Tx, p *domain.Product) error {
	if err := tx.Products().Insert(ctx, p); err != nil {
		return err
	}
	return w.surface(ctx, tx, w.agg.Insert(ctx, tx.Counters(), p.CountKey()))
}

// Update writes p. before is the product's count key as loaded, ahead of any
// modification; the counter is moved only when the key changed.
func (w *Writer) Update(ctx context.Context, tx contracts.Tx, before domain.CountKey, p *domain.Product) error {
	if err := tx.Products().Update(ctx, p); err != nil {
		return err
	}
	return w.surface(ctx, tx, w.agg.Replace(ctx, tx.Counters(), before, p.CountKey()))
}

// Delete removes p and uncounts it.
func (w *Writer) Delete(ctx context.Context, tx contracts.Tx, p *domain.Product) error {
	if err := tx.Products().Delete(ctx, p); err != nil {
		return err
	}
	return w.surface(ctx, tx, w.agg.Delete(ctx, tx.Counters(), p.CountKey()))
}

// surface turns a SyncFailure into a log line and an outbox event. Other
// errors are returned unchanged.
func (w *Writer) surface(ctx context.Context, tx contracts.Tx, err error) error {
	var failure *SyncFailure
	if !errors.As(err, &failure) {
		return err
	}

	entry := w.log.WithFields(logrus.Fields{
		"product_id": failure.Key.ProductID,
		"op":         string(failure.Op),
		"namespace":  failure.Key.Namespace,
		"sort_key":   failure.Key.SortKey,
	}).WithError(failure.Err)
	entry.Error("aggregate sync failure")

	event, err := contracts.NewOutboxEvent(&domain.CountSyncFailedEvent{
		ProductID: failure.Key.ProductID,
		Op:        string(failure.Op),
		Namespace: failure.Key.Namespace,
		SortKey:   failure.Key.SortKey,
		Error:     failure.Err.Error(),
		Timestamp: w.clock.Now(),
	})
	if err != nil {
		entry.WithError(err).Error("failed to build sync failure event")
		return nil
	}
	if err := tx.Outbox().Insert(ctx, event); err != nil {
		entry.WithError(err).Error("failed to record sync failure event")
	}
	return nil
}
