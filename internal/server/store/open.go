package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/xtbe/arcbp-editor/internal/dbx"
	"github.com/xtbe/arcbp-editor/internal/server/migrations"
)

// Supported store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// migrate is a seam for tests.
var migrate = func(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS) error {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// Open returns the repository for driver. SQL backends are migrated to the
// latest schema before use. The returned close function releases the
// underlying database.
func Open(ctx context.Context, driver, dsn string) (Repository, func() error, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryRepository(), func() error { return nil }, nil

	case DriverSQLite:
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite allows one writer; a single connection also keeps
		// ":memory:" databases alive across calls.
		db.SetMaxOpenConns(1)
		if err := migrate(ctx, db, goose.DialectSQLite3, migrations.SQLite()); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return NewSQLRepository(db, dbx.DialectSQLite), db.Close, nil

	case DriverPostgres:
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := migrate(ctx, db, goose.DialectPostgres, migrations.Postgres()); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return NewSQLRepository(db, dbx.DialectPostgres), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
