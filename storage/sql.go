package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"
)

type kvEntry struct {
	bun.BaseModel `bun:"table:portfolio_kv"`

	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SQL is a Store persisted in a single key/value table through bun. It works
// with any dialect that supports INSERT ... ON CONFLICT.
type SQL struct {
	db     *bun.DB
	logger *zap.Logger
	now    func() time.Time
}

var _ Store = (*SQL)(nil)

// NewSQL wraps an open bun database and creates the table when missing.
func NewSQL(ctx context.Context, db *bun.DB, logger *zap.Logger) (*SQL, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	_, err := db.NewCreateTable().
		Model((*kvEntry)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	return &SQL{db: db, logger: logger, now: time.Now}, nil
}

// OpenSQLite opens (or creates) a SQLite database file. Use ":memory:" for a
// throwaway store.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQL, error) {
	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// a single connection keeps ":memory:" databases shared and serialises writers
	sqldb.SetMaxOpenConns(1)

	store, err := NewSQL(ctx, bun.NewDB(sqldb, sqlitedialect.New()), logger)
	if err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return store, nil
}

// OpenPostgres connects to Postgres using a lib/pq DSN.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*SQL, error) {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store, err := NewSQL(ctx, bun.NewDB(sqldb, pgdialect.New()), logger)
	if err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var entry kvEntry
	err := s.db.NewSelect().
		Model(&entry).
		Where("key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	entry := &kvEntry{Key: key, Value: value, UpdatedAt: s.now().UTC()}
	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*kvEntry)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	return err
}

// Keys filters in Go: LIKE would treat the "_" of "cache_" as a wildcard.
func (s *SQL) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.NewSelect().
		Model((*kvEntry)(nil)).
		Column("key").
		Scan(ctx, &keys)
	if err != nil {
		return nil, err
	}
	return filterSorted(keys, prefix), nil
}

func (s *SQL) Close() error {
	s.logger.Debug("closing sql store")
	return s.db.Close()
}
