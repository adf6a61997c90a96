package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/catalog-engine/internal/config"
	"github.com/light-bringer/catalog-engine/internal/pkg/logging"
)

// target identifies the database to migrate.
type target struct {
	project  string
	instance string
	database string
}

func (t target) instancePath() string {
	return fmt.Sprintf("projects/%s/instances/%s", t.project, t.instance)
}

func (t target) databasePath() string {
	return fmt.Sprintf("%s/databases/%s", t.instancePath(), t.database)
}

// parseDatabasePath splits projects/P/instances/I/databases/D.
func parseDatabasePath(path string) (target, error) {
	parts := strings.Split(path, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "instances" || parts[4] != "databases" {
		return target{}, fmt.Errorf("invalid database path %q", path)
	}
	return target{project: parts[1], instance: parts[3], database: parts[5]}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	dbPath := flag.String("database", cfg.SpannerDatabase, "Spanner database path (projects/P/instances/I/databases/D)")
	migrateDir := flag.String("migrations", "migrations", "Directory containing migration SQL files")
	flag.Parse()

	log, err := logging.New(cfg.LogLevel, logging.FormatFor(cfg.AppEnv))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create logger")
	}

	t, err := parseDatabasePath(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("Migration failed")
	}

	// Instances can only be created on the emulator
	emulator := os.Getenv("SPANNER_EMULATOR_HOST")
	if emulator != "" {
		log.Infof("Using Spanner emulator at %s", emulator)
	}

	if err := run(context.Background(), log, t, *migrateDir, emulator != ""); err != nil {
		log.WithError(err).Fatal("Migration failed")
	}
	log.Info("Migrations completed successfully")
}

func run(ctx context.Context, log logrus.FieldLogger, t target, dir string, emulator bool) error {
	if emulator {
		if err := ensureInstance(ctx, log, t); err != nil {
			return fmt.Errorf("failed to ensure instance: %w", err)
		}
	}
	if err := ensureDatabase(ctx, log, t); err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}
	if err := applyMigrations(ctx, log, t, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func ensureInstance(ctx context.Context, log logrus.FieldLogger, t target) error {
	log.Infof("Ensuring instance %s exists...", t.instance)

	instanceAdmin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer instanceAdmin.Close()

	_, err = instanceAdmin.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: t.instancePath()})
	if err == nil {
		log.Info("Instance already exists")
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to check instance: %w", err)
	}

	log.Info("Creating instance...")
	op, err := instanceAdmin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     "projects/" + t.project,
		InstanceId: t.instance,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", t.project),
			DisplayName: "Development Instance",
			NodeCount:   1,
		},
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("failed to create instance: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		log.WithError(err).Warn("Instance creation did not report completion")
	}

	log.Info("Instance created successfully")
	return nil
}

func ensureDatabase(ctx context.Context, log logrus.FieldLogger, t target) error {
	log.Infof("Ensuring database %s exists...", t.database)

	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	_, err = adminClient.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: t.databasePath()})
	if err == nil {
		log.Info("Database already exists")
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to check database: %w", err)
	}

	log.Info("Creating database...")
	op, err := adminClient.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          t.instancePath(),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", t.database),
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("failed to create database: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for database creation: %w", err)
	}

	log.Info("Database created successfully")
	return nil
}

func applyMigrations(ctx context.Context, log logrus.FieldLogger, t target, dir string) error {
	log.Infof("Applying migrations from %s...", dir)

	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migration files: %w", err)
	}
	if len(files) == 0 {
		log.Warn("No migration files found")
		return nil
	}
	sort.Strings(files)

	current, err := adminClient.GetDatabaseDdl(ctx, &databasepb.GetDatabaseDdlRequest{Database: t.databasePath()})
	if err != nil {
		return fmt.Errorf("failed to read current schema: %w", err)
	}
	if len(current.GetStatements()) > 0 {
		log.Infof("Schema already has %d statements, skipping", len(current.GetStatements()))
		return nil
	}

	for _, file := range files {
		name := filepath.Base(file)
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		statements := splitDDLStatements(string(content))
		log.WithFields(logrus.Fields{"file": name, "statements": len(statements)}).Info("Applying migration")

		op, err := adminClient.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
			Database:   t.databasePath(),
			Statements: statements,
		})
		if err != nil {
			return fmt.Errorf("failed to start DDL update for %s: %w", name, err)
		}
		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to apply DDL for %s: %w", name, err)
		}
	}
	return nil
}

// splitDDLStatements drops comment lines and splits on semicolons.
func splitDDLStatements(content string) []string {
	var cleaned []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	var result []string
	for _, stmt := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}
