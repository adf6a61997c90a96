package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-engine/internal/app/product/catalog"
	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/countagg"
	domainsvc "github.com/light-bringer/catalog-engine/internal/app/product/domain/services"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/count_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/filter_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/get_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/list_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/list_sync_failures"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/search_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/search_suggestions"
	"github.com/light-bringer/catalog-engine/internal/app/product/repo"
	"github.com/light-bringer/catalog-engine/internal/app/product/repo/memstore"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/activate_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/archive_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/backfill_counters"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/create_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/delete_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/update_product"
	"github.com/light-bringer/catalog-engine/internal/config"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
	"github.com/light-bringer/catalog-engine/internal/pkg/committer"
)

// Backend is the store the service runs on.
type Backend struct {
	UnitOfWork contracts.UnitOfWork
	Catalog    contracts.CatalogReader
	Counts     contracts.CountReader
	Outbox     contracts.OutboxReader

	// SpannerClient is nil for the memory driver.
	SpannerClient *spanner.Client
}

// SpannerBackend connects to database and wires the Spanner repositories.
func SpannerBackend(ctx context.Context, database string) (*Backend, error) {
	client, err := spanner.NewClient(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spanner client: %w", err)
	}
	return &Backend{
		UnitOfWork:    repo.NewUnitOfWork(committer.NewCommitter(client)),
		Catalog:       repo.NewReadModel(client),
		Counts:        repo.NewCountReadModel(client),
		Outbox:        repo.NewEventsReadModel(client),
		SpannerClient: client,
	}, nil
}

// MemoryBackend serves everything from store.
func MemoryBackend(store *memstore.Store) *Backend {
	return &Backend{
		UnitOfWork: store,
		Catalog:    store,
		Counts:     store,
		Outbox:     store,
	}
}

// Commands are the admin write operations.
type Commands struct {
	CreateProduct    *create_product.Interactor
	UpdateProduct    *update_product.Interactor
	ActivateProduct  *activate_product.Interactor
	ArchiveProduct   *archive_product.Interactor
	DeleteProduct    *delete_product.Interactor
	BackfillCounters *backfill_counters.Interactor
}

// Queries are the read operations.
type Queries struct {
	FilterProducts    *filter_products.Query
	ListProducts      *list_products.Query
	CountProducts     *count_products.Query
	SearchProducts    *search_products.Query
	SearchSuggestions *search_suggestions.Query
	GetProduct        *get_product.Query
	ListSyncFailures  *list_sync_failures.Query
}

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	Config   *config.Config
	Log      logrus.FieldLogger
	Backend  *Backend
	Verifier *auth.TokenVerifier

	Commands Commands
	Queries  Queries
}

// NewServiceOptions picks the backend named by cfg.StoreDriver and wires the application on it.
func NewServiceOptions(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*ServiceOptions, error) {
	var backend *Backend
	switch cfg.StoreDriver {
	case config.DriverMemory:
		backend = MemoryBackend(memstore.New())
	case config.DriverSpanner:
		b, err := SpannerBackend(ctx, cfg.SpannerDatabase)
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	log.WithField("driver", cfg.StoreDriver).Info("catalog store ready")
	return New(cfg, log, clock.NewRealClock(), backend), nil
}

// New wires use cases and queries on an existing backend.
func New(cfg *config.Config, log logrus.FieldLogger, clk clock.Clock, backend *Backend) *ServiceOptions {
	// 1. Catalog engine
	selector := catalog.NewSelector(backend.Catalog, cfg.CandidateCeiling, log)
	enricher := catalog.NewEnricher(backend.Catalog, cfg.EnrichConcurrency, log)

	// 2. Count aggregate
	writer := countagg.NewWriter(countagg.NewAggregate(log), clk, log)
	counter := countagg.NewCounter(backend.Counts, backend.Catalog, selector)

	// 3. Commands (write operations)
	commands := Commands{
		CreateProduct:    create_product.NewInteractor(backend.UnitOfWork, writer, domainsvc.NewSlugGenerator(), clk),
		UpdateProduct:    update_product.NewInteractor(backend.UnitOfWork, writer, clk),
		ActivateProduct:  activate_product.NewInteractor(backend.UnitOfWork, writer, clk),
		ArchiveProduct:   archive_product.NewInteractor(backend.UnitOfWork, writer, clk),
		DeleteProduct:    delete_product.NewInteractor(backend.UnitOfWork, writer, clk),
		BackfillCounters: backfill_counters.NewInteractor(backend.UnitOfWork, backend.Catalog, backend.Counts, backend.Outbox, log),
	}

	// 4. Queries (read operations)
	queries := Queries{
		FilterProducts:    filter_products.NewQuery(selector, enricher, cfg.DefaultPageSize, cfg.MaxPageSize),
		ListProducts:      list_products.NewQuery(backend.Catalog, selector, enricher),
		CountProducts:     count_products.NewQuery(counter),
		SearchProducts:    search_products.NewQuery(selector, enricher, cfg.SearchLimit),
		SearchSuggestions: search_suggestions.NewQuery(backend.Catalog, cfg.SuggestionLimit),
		GetProduct:        get_product.NewQuery(backend.Catalog, enricher),
		ListSyncFailures:  list_sync_failures.NewQuery(backend.Outbox),
	}

	return &ServiceOptions{
		Config:   cfg,
		Log:      log,
		Backend:  backend,
		Verifier: auth.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Commands: commands,
		Queries:  queries,
	}
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.Backend != nil && s.Backend.SpannerClient != nil {
		s.Backend.SpannerClient.Close()
	}
}
