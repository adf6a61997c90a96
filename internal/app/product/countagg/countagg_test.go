package countagg

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-engine/internal/app/product/catalog"
	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/repo/memstore"
	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
)

var baseTime = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

var errBackend = errors.New("counter backend down")

func inTx(t *testing.T, store *memstore.Store, fn func(ctx context.Context, tx contracts.Tx) error) {
	t.Helper()
	require.NoError(t, store.Do(context.Background(), fn))
}

func count(t *testing.T, store *memstore.Store, status domain.ProductStatus) int64 {
	t.Helper()
	n, err := store.CountNamespace(context.Background(), domain.CountNamespace(status))
	require.NoError(t, err)
	return n
}

func key(status domain.ProductStatus, id string) domain.CountKey {
	return domain.CountKeyFor(status, baseTime, id)
}

func TestAggregate_Replace(t *testing.T) {
	draft := key(domain.StatusDraft, "p1")
	active := key(domain.StatusActive, "p1")

	tests := []struct {
		name       string
		seeded     bool
		fault      memstore.CounterFault
		wantErr    bool
		wantDraft  int64
		wantActive int64
	}{
		{name: "moves entry", seeded: true, wantActive: 1},
		{name: "missing old falls back to insert", seeded: false, wantActive: 1},
		{
			name:   "delete failure keeps old entry",
			seeded: true,
			fault: func(op string, _ domain.CountKey) error {
				if op == "delete" {
					return errBackend
				}
				return nil
			},
			wantErr:   true,
			wantDraft: 1,
		},
		{
			name:   "insert failure after fallback",
			seeded: false,
			fault: func(op string, _ domain.CountKey) error {
				if op == "insert" {
					return errBackend
				}
				return nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			agg := NewAggregate(logrus.New())
			if tt.seeded {
				inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
					return agg.Insert(ctx, tx.Counters(), draft)
				})
			}
			store.InjectCounterFault(tt.fault)

			var replaceErr error
			inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
				replaceErr = agg.Replace(ctx, tx.Counters(), draft, active)
				return nil
			})

			if tt.wantErr {
				var failure *SyncFailure
				require.ErrorAs(t, replaceErr, &failure)
				assert.Equal(t, OpReplace, failure.Op)
				assert.ErrorIs(t, replaceErr, domain.ErrAggregateSyncFailure)
				assert.ErrorIs(t, replaceErr, errBackend)
			} else {
				assert.NoError(t, replaceErr)
			}
			assert.Equal(t, tt.wantDraft, count(t, store, domain.StatusDraft))
			assert.Equal(t, tt.wantActive, count(t, store, domain.StatusActive))
		})
	}
}

func TestAggregate_InsertAndDeleteAreTolerant(t *testing.T) {
	store := memstore.New()
	agg := NewAggregate(logrus.New())
	k := key(domain.StatusActive, "p1")

	inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
		require.NoError(t, agg.Insert(ctx, tx.Counters(), k))
		require.NoError(t, agg.Insert(ctx, tx.Counters(), k))
		return nil
	})
	assert.Equal(t, int64(1), count(t, store, domain.StatusActive))

	inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
		require.NoError(t, agg.Delete(ctx, tx.Counters(), k))
		require.NoError(t, agg.Delete(ctx, tx.Counters(), k))
		return nil
	})
	assert.Zero(t, count(t, store, domain.StatusActive))
}

func TestAggregate_ReplaceSameKeyIsNoop(t *testing.T) {
	store := memstore.New()
	store.InjectCounterFault(func(string, domain.CountKey) error { return errBackend })
	k := key(domain.StatusActive, "p1")

	inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
		assert.NoError(t, NewAggregate(logrus.New()).Replace(ctx, tx.Counters(), k, k))
		return nil
	})
}

func newProduct(t *testing.T, id string, status domain.ProductStatus, now time.Time) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(id, id, domain.NewProductParams{
		Name:      "Product " + id,
		BasePrice: 1000,
		Status:    status,
	}, now)
	require.NoError(t, err)
	return p
}

func TestWriter_SyncFailureStillCommits(t *testing.T) {
	store := memstore.New()
	log, hook := logtest.NewNullLogger()
	clk := clock.NewMockClock(baseTime)
	w := NewWriter(NewAggregate(log), clk, log)

	store.InjectCounterFault(func(op string, _ domain.CountKey) error {
		if op == "insert" {
			return errBackend
		}
		return nil
	})

	p := newProduct(t, "p1", domain.StatusDraft, clk.Now())
	inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
		return w.Insert(ctx, tx, p)
	})

	_, err := store.GetProduct(context.Background(), "p1")
	require.NoError(t, err, "primary write committed")
	assert.Zero(t, count(t, store, domain.StatusDraft))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "aggregate sync failure", entry.Message)
	assert.Equal(t, "p1", entry.Data["product_id"])
	assert.Equal(t, "insert", entry.Data["op"])
	assert.Equal(t, "v2_draft", entry.Data["namespace"])

	events, err := store.ListEvents(context.Background(), contracts.EventFilter{
		EventType: domain.EventTypeCountSyncFailed,
		Status:    contracts.OutboxPending,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "p1", events[0].AggregateID)
	assert.Contains(t, events[0].Payload, errBackend.Error())
}

func TestWriter_StatusChangeMovesCount(t *testing.T) {
	store := memstore.New()
	clk := clock.NewMockClock(baseTime)
	w := NewWriter(NewAggregate(logrus.New()), clk, logrus.New())

	p := newProduct(t, "p1", domain.StatusDraft, clk.Now())
	inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
		return w.Insert(ctx, tx, p)
	})
	assert.Equal(t, int64(1), count(t, store, domain.StatusDraft))

	inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
		loaded, err := tx.Products().Get(ctx, "p1")
		if err != nil {
			return err
		}
		before := loaded.CountKey()
		loaded.Activate(clk.Now())
		return w.Update(ctx, tx, before, loaded)
	})
	assert.Zero(t, count(t, store, domain.StatusDraft))
	assert.Equal(t, int64(1), count(t, store, domain.StatusActive))

	inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
		loaded, err := tx.Products().Get(ctx, "p1")
		if err != nil {
			return err
		}
		return w.Delete(ctx, tx, loaded)
	})
	assert.Zero(t, count(t, store, domain.StatusActive))
}

// Random create/status change/delete sequences keep the per-status counts
// summing to the number of stored products.
func TestWriter_CountsTrackProductsUnderRandomOps(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*31))
			store := memstore.New()
			clk := clock.NewSteppingClock(baseTime, time.Second)
			w := NewWriter(NewAggregate(logrus.New()), clk, logrus.New())

			live := make([]string, 0)
			next := 0
			for range 200 {
				switch op := rng.IntN(4); {
				case op == 0 || len(live) == 0:
					id := fmt.Sprintf("p-%d", next)
					next++
					status := domain.StatusDraft
					if rng.IntN(2) == 0 {
						status = domain.StatusActive
					}
					p := newProduct(t, id, status, clk.Now())
					inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
						return w.Insert(ctx, tx, p)
					})
					live = append(live, id)

				case op == 3:
					i := rng.IntN(len(live))
					id := live[i]
					inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
						p, err := tx.Products().Get(ctx, id)
						if err != nil {
							return err
						}
						return w.Delete(ctx, tx, p)
					})
					live = append(live[:i], live[i+1:]...)

				default:
					id := live[rng.IntN(len(live))]
					target := domain.AllStatuses[rng.IntN(len(domain.AllStatuses))]
					inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
						p, err := tx.Products().Get(ctx, id)
						if err != nil {
							return err
						}
						before := p.CountKey()
						p.SetStatus(target, clk.Now())
						return w.Update(ctx, tx, before, p)
					})
				}
			}

			var sum int64
			for _, s := range domain.AllStatuses {
				n := count(t, store, s)
				assert.GreaterOrEqual(t, n, int64(0))
				sum += n
			}
			assert.Equal(t, int64(len(live)), sum)

			var actual int
			require.NoError(t, store.ScanProducts(context.Background(), func(*domain.Product) error {
				actual++
				return nil
			}))
			assert.Equal(t, len(live), actual)
		})
	}
}

func TestCounter_Paths(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	clk := clock.NewSteppingClock(baseTime, time.Second)
	w := NewWriter(NewAggregate(logrus.New()), clk, logrus.New())

	statuses := []domain.ProductStatus{
		domain.StatusActive, domain.StatusActive, domain.StatusActive,
		domain.StatusDraft, domain.StatusArchived,
	}
	for i, st := range statuses {
		// Products are created draft or active; archived ones get there by update.
		initial := st
		if st == domain.StatusArchived {
			initial = domain.StatusActive
		}
		p := newProduct(t, fmt.Sprintf("lamp-%d", i), initial, clk.Now())
		if i < 2 {
			cat := "lighting"
			require.NoError(t, p.Apply(domain.ProductPatch{CategoryID: &cat}, clk.Now()))
		}
		inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
			return w.Insert(ctx, tx, p)
		})
		if st == domain.StatusArchived {
			inTx(t, store, func(ctx context.Context, tx contracts.Tx) error {
				loaded, err := tx.Products().Get(ctx, p.ID())
				if err != nil {
					return err
				}
				before := loaded.CountKey()
				loaded.Archive(clk.Now())
				return w.Update(ctx, tx, before, loaded)
			})
		}
	}

	sel := catalog.NewSelector(store, 2, logrus.New())
	counter := NewCounter(store, store, sel)
	active := catalog.ActiveOnly()
	archived := domain.StatusArchived

	tests := []struct {
		name   string
		filter CountFilter
		want   Result
	}{
		{"all statuses", CountFilter{}, Result{Count: 5, Path: PathCounter}},
		{"one status", CountFilter{Status: active}, Result{Count: 3, Path: PathCounter}},
		{"archived by update", CountFilter{Status: &archived}, Result{Count: 1, Path: PathCounter}},
		{"category is uncapped", CountFilter{CategoryID: "lighting"}, Result{Count: 2, Path: PathCategory}},
		{"category and status", CountFilter{CategoryID: "lighting", Status: active}, Result{Count: 2, Path: PathCategory}},
		{"search is capped at ceiling", CountFilter{Search: "product"}, Result{Count: 2, Path: PathSearch, Approximate: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := counter.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCounter_NamespacePathNeverScansProducts(t *testing.T) {
	store := memstore.New()
	// Rows written around the aggregate are invisible to the counter path.
	store.PutProductRaw(domain.ProductState{ID: "legacy", Slug: "legacy", Status: domain.StatusActive, CreatedAt: baseTime})

	counter := NewCounter(store, store, catalog.NewSelector(store, 10, logrus.New()))
	got, err := counter.Count(context.Background(), CountFilter{Status: catalog.ActiveOnly()})
	require.NoError(t, err)
	assert.Zero(t, got.Count)
}
