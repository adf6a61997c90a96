package backfill_counters

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
)

// DefaultBatchSize is the number of counter fixes applied per transaction.
const DefaultBatchSize = 500

// Request configures a backfill run.
type Request struct {
	Actor     *auth.Principal
	DryRun    bool
	BatchSize int
}

// Result summarizes a backfill run.
type Result struct {
	Products         int              `json:"products"`
	Entries          int              `json:"entries"`
	Missing          int              `json:"missing"`
	Extra            int              `json:"extra"`
	Inserted         int              `json:"inserted"`
	Deleted          int              `json:"deleted"`
	Totals           map[string]int64 `json:"totals,omitempty"`
	ResolvedFailures int              `json:"resolvedFailures"`
	DryRun           bool             `json:"dryRun"`
}

// Interactor rebuilds the count aggregate from the products table.
//
// It diffs stored entries against the keys the products imply, applies the
// difference in batches and recounts every namespace total. Each fix is
// re-checked against the product inside its transaction, so products written
// while the backfill runs are never double counted. Running it twice leaves
// the same state as running it once.
type Interactor struct {
	uow    contracts.UnitOfWork
	reader contracts.CatalogReader
	counts contracts.CountReader
	outbox contracts.OutboxReader
	log    logrus.FieldLogger
}

// NewInteractor creates a new backfill counters interactor.
func NewInteractor(
	uow contracts.UnitOfWork,
	reader contracts.CatalogReader,
	counts contracts.CountReader,
	outbox contracts.OutboxReader,
	log logrus.FieldLogger,
) *Interactor {
	return &Interactor{
		uow:    uow,
		reader: reader,
		counts: counts,
		outbox: outbox,
		log:    log,
	}
}

// Execute runs the backfill.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Result, error) {
	if err := auth.RequireAdmin(req.Actor); err != nil {
		return nil, err
	}
	batchSize := req.BatchSize
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	// 1. Failures recorded so far; only these are resolved by this run.
	pending, err := i.outbox.ListEvents(ctx, contracts.EventFilter{
		EventType: domain.EventTypeCountSyncFailed,
		Status:    contracts.OutboxPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sync failures: %w", err)
	}

	// 2. Entries before products: anything written in between shows up as a
	// fix that the per-key re-check turns into a no-op.
	stored := make(map[domain.CountKey]struct{})
	namespaces := make(map[string]struct{})
	for _, s := range domain.AllStatuses {
		namespaces[domain.CountNamespace(s)] = struct{}{}
	}
	if err := i.counts.ScanEntries(ctx, func(k domain.CountKey) error {
		stored[k] = struct{}{}
		namespaces[k.Namespace] = struct{}{}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to scan count entries: %w", err)
	}

	expected := make(map[domain.CountKey]struct{})
	if err := i.reader.ScanProducts(ctx, func(p *domain.Product) error {
		expected[p.CountKey()] = struct{}{}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	missing := diff(expected, stored)
	extra := diff(stored, expected)
	res := &Result{
		Products: len(expected),
		Entries:  len(stored),
		Missing:  len(missing),
		Extra:    len(extra),
		DryRun:   req.DryRun,
	}

	logger := i.log.WithFields(logrus.Fields{
		"products": res.Products,
		"entries":  res.Entries,
		"missing":  res.Missing,
		"extra":    res.Extra,
		"pending":  len(pending),
	})
	if req.DryRun {
		logger.Info("count backfill dry run")
		return res, nil
	}
	logger.Info("count backfill started")

	// 3. Apply the difference in batches.
	for start := 0; start < len(missing); start += batchSize {
		n, err := i.insertBatch(ctx, missing[start:min(start+batchSize, len(missing))])
		if err != nil {
			return nil, err
		}
		res.Inserted += n
	}
	for start := 0; start < len(extra); start += batchSize {
		n, err := i.deleteBatch(ctx, extra[start:min(start+batchSize, len(extra))])
		if err != nil {
			return nil, err
		}
		res.Deleted += n
	}

	// 4. Recount totals and resolve the failures observed at the start.
	ids := make([]string, 0, len(pending))
	for _, e := range pending {
		ids = append(ids, e.EventID)
	}
	totals := make(map[string]int64, len(namespaces))
	err = i.uow.Do(ctx, func(ctx context.Context, tx contracts.Tx) error {
		for ns := range namespaces {
			n, err := tx.Counters().Recount(ctx, ns)
			if err != nil {
				return fmt.Errorf("failed to recount %s: %w", ns, err)
			}
			totals[ns] = n
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Outbox().MarkCompleted(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	res.Totals = totals
	res.ResolvedFailures = len(ids)

	i.log.WithFields(logrus.Fields{
		"inserted": res.Inserted,
		"deleted":  res.Deleted,
		"resolved": res.ResolvedFailures,
	}).Info("count backfill completed")
	return res, nil
}

// insertBatch counts keys whose product still has that key.
func (i *Interactor) insertBatch(ctx context.Context, keys []domain.CountKey) (int, error) {
	var n int
	err := i.uow.Do(ctx, func(ctx context.Context, tx contracts.Tx) error {
		n = 0
		for _, k := range keys {
			p, err := tx.Products().Get(ctx, k.ProductID)
			if errors.Is(err, domain.ErrProductNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !p.CountKey().Equal(k) {
				continue
			}
			err = tx.Counters().Insert(ctx, k)
			if errors.Is(err, domain.ErrCountEntryExists) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to insert count entry: %w", err)
			}
			n++
		}
		return nil
	})
	return n, err
}

// deleteBatch uncounts keys that no product holds any more.
func (i *Interactor) deleteBatch(ctx context.Context, keys []domain.CountKey) (int, error) {
	var n int
	err := i.uow.Do(ctx, func(ctx context.Context, tx contracts.Tx) error {
		n = 0
		for _, k := range keys {
			p, err := tx.Products().Get(ctx, k.ProductID)
			switch {
			case errors.Is(err, domain.ErrProductNotFound):
			case err != nil:
				return err
			case p.CountKey().Equal(k):
				continue
			}
			err = tx.Counters().Delete(ctx, k)
			if errors.Is(err, domain.ErrCountEntryNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to delete count entry: %w", err)
			}
			n++
		}
		return nil
	})
	return n, err
}

// diff returns the keys of a not in b, in key order.
func diff(a, b map[domain.CountKey]struct{}) []domain.CountKey {
	out := make([]domain.CountKey, 0)
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
