// Package countagg maintains the namespace-partitioned product counter and
// answers count queries from it.
//
// Every product write goes through Writer, which pairs the primary write with
// the matching counter operation inside the same contracts.Tx.
package countagg

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// Op names a counter operation.
type Op string

const (
	OpInsert  Op = "insert"
	OpReplace Op = "replace"
	OpDelete  Op = "delete"
)

// SyncFailure is a counter operation that could not be applied. The counter is
// stale for Key until backfill runs.
type SyncFailure struct {
	Op  Op
	Key domain.CountKey
	Err error
}

func (f *SyncFailure) Error() string {
	return fmt.Sprintf("count aggregate %s %s/%s failed: %v", f.Op, f.Key.Namespace, f.Key.ProductID, f.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (f *SyncFailure) Unwrap() []error {
	return []error{domain.ErrAggregateSyncFailure, f.Err}
}

// Aggregate applies insert/replace/delete to a CounterStore.
type Aggregate struct {
	log logrus.FieldLogger
}

// NewAggregate creates an Aggregate.
func NewAggregate(log logrus.FieldLogger) *Aggregate {
	return &Aggregate{log: log}
}

// Insert counts key. A key that is already counted is left alone.
func (a *Aggregate) Insert(ctx context.Context, counters contracts.CounterStore, key domain.CountKey) error {
	if err := a.insert(ctx, counters, key); err != nil {
		return &SyncFailure{Op: OpInsert, Key: key, Err: err}
	}
	return nil
}

// Replace moves a product from old to next. If old is not counted (data that
// predates the counter) the replace falls back to a plain insert of next.
func (a *Aggregate) Replace(ctx context.Context, counters contracts.CounterStore, old, next domain.CountKey) error {
	if old.Equal(next) {
		return nil
	}

	err := counters.Delete(ctx, old)
	switch {
	case errors.Is(err, domain.ErrCountEntryNotFound):
		a.log.WithFields(logrus.Fields{
			"product_id": old.ProductID,
			"namespace":  old.Namespace,
		}).Warn("count entry missing on replace, falling back to insert")
	case err != nil:
		// old is still counted; inserting next would count the product twice.
		return &SyncFailure{Op: OpReplace, Key: old, Err: err}
	}

	if err := a.insert(ctx, counters, next); err != nil {
		return &SyncFailure{Op: OpReplace, Key: next, Err: err}
	}
	return nil
}

// Delete uncounts key. A key that is not counted is left alone.
func (a *Aggregate) Delete(ctx context.Context, counters contracts.CounterStore, key domain.CountKey) error {
	err := counters.Delete(ctx, key)
	switch {
	case errors.Is(err, domain.ErrCountEntryNotFound):
		a.log.WithFields(logrus.Fields{
			"product_id": key.ProductID,
			"namespace":  key.Namespace,
		}).Warn("count entry missing on delete")
		return nil
	case err != nil:
		return &SyncFailure{Op: OpDelete, Key: key, Err: err}
	}
	return nil
}

func (a *Aggregate) insert(ctx context.Context, counters contracts.CounterStore, key domain.CountKey) error {
	err := counters.Insert(ctx, key)
	if errors.Is(err, domain.ErrCountEntryExists) {
		return nil
	}
	return err
}
