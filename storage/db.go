// Package storage is the off-chain metadata store: company listings and
// resale listings in Postgres. It holds discovery data only; ledger state is
// never written here.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var (
	// ErrNotFound is a valid lookup outcome, distinct from transport or
	// constraint failures.
	ErrNotFound = errors.New("not found")

	// ErrPersistence wraps constraint violations and connectivity failures.
	ErrPersistence = errors.New("persistence error")
)

type DB struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect applies pending migrations and opens the connection pool.
func Connect(ctx context.Context, databaseURL string, log zerolog.Logger) (*DB, error) {
	if err := runMigrations(databaseURL, log); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse database config: %v", ErrPersistence, err)
	}
	poolConfig.MaxConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to create connection pool: %v", ErrPersistence, err)
	}

	log.Info().Msg("connected to metadata database")
	return &DB{pool: pool, log: log.With().Str("component", "storage").Logger()}, nil
}

func (d *DB) Close() {
	d.pool.Close()
}

func runMigrations(databaseURL string, log zerolog.Logger) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	migrations := migrate.EmbedFileSystemMigrationSource{FileSystem: migrationFS, Root: "migrations"}
	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if n > 0 {
		log.Info().Int("applied", n).Msg("applied database migrations")
	}
	return nil
}
