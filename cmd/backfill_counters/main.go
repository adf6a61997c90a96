package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/backfill_counters"
	"github.com/light-bringer/catalog-engine/internal/config"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
	"github.com/light-bringer/catalog-engine/internal/pkg/logging"
	"github.com/light-bringer/catalog-engine/internal/services"
)

// Options for one backfill run.
type Options struct {
	SpannerDB string
	BatchSize int
	DryRun    bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	opts := Options{}
	flag.StringVar(&opts.SpannerDB, "database", cfg.SpannerDatabase, "Spanner database (format: projects/PROJECT/instances/INSTANCE/databases/DATABASE)")
	flag.IntVar(&opts.BatchSize, "batch-size", backfill_counters.DefaultBatchSize, "Counter fixes applied per transaction")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Report the drift without fixing it")
	flag.Parse()

	log, err := logging.New(cfg.LogLevel, logging.FormatFor(cfg.AppEnv))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := backfill(ctx, cfg, log, opts); err != nil {
		log.WithError(err).Fatal("Backfill failed")
	}
	log.Info("Backfill completed successfully")
}

func backfill(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts Options) error {
	backend, err := services.SpannerBackend(ctx, opts.SpannerDB)
	if err != nil {
		return err
	}
	app := services.New(cfg, log, clock.NewRealClock(), backend)
	defer app.Close()

	log.WithFields(logrus.Fields{
		"database":   opts.SpannerDB,
		"batch_size": opts.BatchSize,
		"dry_run":    opts.DryRun,
	}).Info("Starting count aggregate backfill")

	result, err := app.Commands.BackfillCounters.Execute(ctx, &backfill_counters.Request{
		Actor:     operator(),
		DryRun:    opts.DryRun,
		BatchSize: opts.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	log.WithFields(logrus.Fields{
		"products":          result.Products,
		"entries":           result.Entries,
		"missing":           result.Missing,
		"extra":             result.Extra,
		"inserted":          result.Inserted,
		"deleted":           result.Deleted,
		"resolved_failures": result.ResolvedFailures,
	}).Info("Backfill summary")
	for namespace, total := range result.Totals {
		log.WithFields(logrus.Fields{"namespace": namespace, "total": total}).Info("Namespace total")
	}
	if opts.DryRun {
		log.Info("DRY RUN: run without -dry-run to apply the fixes")
	}
	return nil
}

// operator is the principal the CLI acts as; access is governed by database credentials.
func operator() *auth.Principal {
	return &auth.Principal{Subject: "backfill-cli", Role: auth.RoleAdmin}
}
