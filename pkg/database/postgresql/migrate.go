package postgresql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrator applies the embedded, versioned schema log. A Postgres advisory
// session lock serializes concurrent runs from several processes.
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
	logger   *zap.Logger
}

func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) (*Migrator, error) {
	migrationsFS, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}

	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return nil, fmt.Errorf("could not create migration lock: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrationsFS, goose.WithSessionLocker(locker))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migration provider: %w", err)
	}

	return &Migrator{db: db, provider: provider, logger: logger.Named("migrate")}, nil
}

func (m *Migrator) Close() error {
	return m.db.Close()
}

func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	for _, r := range results {
		m.logger.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.String("file", r.Source.Path),
			zap.Duration("duration", r.Duration),
		)
	}
	if err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("could not read schema version: %w", err)
	}
	m.logger.Info("schema is up to date", zap.Int64("version", version))
	return nil
}

// Down rolls back the given number of migrations, newest first.
func (m *Migrator) Down(ctx context.Context, steps int) error {
	for i := 0; i < steps; i++ {
		r, err := m.provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
		if r == nil || r.Source == nil {
			return nil
		}
		m.logger.Info("migration rolled back", zap.Int64("version", r.Source.Version), zap.String("file", r.Source.Path))
	}
	return nil
}

type MigrationState struct {
	Version int64
	File    string
	State   string
}

func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read migration status: %w", err)
	}
	out := make([]MigrationState, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationState{
			Version: s.Source.Version,
			File:    s.Source.Path,
			State:   string(s.State),
		})
	}
	return out, nil
}
