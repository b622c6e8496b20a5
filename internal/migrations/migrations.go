package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql
var MigrationsFS embed.FS

// RunMigrations installs the database extensions and the schema lock table. Resource tables
// are created from their definitions, not by migrations.
func RunMigrations(databaseURL string) error {
	log := zap.S().With("component", "migrations")
	log.Info("Running database migrations from embedded files")

	sourceInstance, err := iofs.New(MigrationsFS, "postgres")
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver: %w", err)
	}
	defer func() {
		if cerr := sourceInstance.Close(); cerr != nil {
			log.Warnw("Error closing migration source instance", "error", cerr)
		}
	}()

	migrateDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migration: %w", err)
	}
	defer func() {
		if cerr := migrateDB.Close(); cerr != nil {
			log.Warnw("Error closing migration db connection", "error", cerr)
		}
	}()

	if err = migrateDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database for migration: %w", err)
	}

	dbDriver, err := postgres.WithInstance(migrateDB, &postgres.Config{
		MigrationsTable: postgres.DefaultMigrationsTable,
	})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceInstance, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogAdapter{log: log}

	err = m.Up()
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Warnw("Error closing migration source", "error", srcErr)
	}
	if dbErr != nil {
		log.Warnw("Error closing migration database connection", "error", dbErr)
	}

	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("No database schema changes to apply")
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	default:
		log.Info("Database migrations completed successfully")
	}
	return nil
}

type migrateLogAdapter struct {
	log *zap.SugaredLogger
}

func (l *migrateLogAdapter) Printf(format string, v ...any) {
	l.log.Infof(format, v...)
}

func (l *migrateLogAdapter) Verbose() bool {
	return l.log.Desugar().Core().Enabled(zap.DebugLevel)
}
