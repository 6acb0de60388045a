package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/markdave123-py/insightcart/internal/core"
)

// dialect captures the few places Postgres and SQLite disagree.
type dialect struct {
	name            string
	driver          string
	script          string
	metaExistsQuery string
	numbered        bool
}

func (d dialect) placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

var (
	postgresDialect = dialect{
		name:   "postgres",
		driver: "pgx",
		script: "scripts/initdb.sql",
		metaExistsQuery: `SELECT EXISTS (
			SELECT 1 FROM information_schema.tables WHERE table_name = 'insightcart_meta'
		)`,
		numbered: true,
	}
	sqliteDialect = dialect{
		name:            "sqlite",
		driver:          "sqlite",
		script:          "scripts/initdb_sqlite.sql",
		metaExistsQuery: `SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'insightcart_meta')`,
	}
)

// SQLStore keeps each key as one row of kv_store.
type SQLStore struct {
	db      *sql.DB
	dialect dialect

	getQ    string
	upsertQ string
	deleteQ string
}

var _ core.Store = (*SQLStore)(nil)

// NewPostgresStore opens DATABASE_URL through the pgx stdlib driver.
func NewPostgresStore(ctx context.Context, databaseURL string) (*SQLStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	db, err := sql.Open(postgresDialect.driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	return newSQLStore(ctx, db, postgresDialect)
}

// NewSQLiteStore opens (or creates) the SQLite file at path. ":memory:" is
// accepted for tests.
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLITE_PATH is empty")
	}
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, sqliteDialect)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	if err := EnsureBootstrapped(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	p1, p2, p3 := d.placeholder(1), d.placeholder(2), d.placeholder(3)
	return &SQLStore{
		db:      db,
		dialect: d,
		getQ:    fmt.Sprintf(`SELECT value FROM kv_store WHERE key = %s`, p1),
		upsertQ: fmt.Sprintf(`
			INSERT INTO kv_store (key, value, updated_at) VALUES (%s, %s, %s)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, p1, p2, p3),
		deleteQ: fmt.Sprintf(`DELETE FROM kv_store WHERE key = %s`, p1),
	}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.getQ, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s get %q: %w", s.dialect.name, key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.upsertQ, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("%s set %q: %w", s.dialect.name, key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.deleteQ, key); err != nil {
		return fmt.Errorf("%s delete %q: %w", s.dialect.name, key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
