package preference

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgDB is the subset of *pgxpool.Pool used by PgKV.
type pgDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PgKV stores preferences in a PostgreSQL table with key and value columns.
type PgKV struct {
	db    pgDB
	table string
}

// NewPgKV creates a PostgreSQL-backed store. The table name must already
// be validated as a plain identifier.
func NewPgKV(db pgDB, table string) *PgKV {
	return &PgKV{db: db, table: table}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// EnsureSchema creates the preferences table if it does not exist.
func (p *PgKV) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)`, p.table))
	if err != nil {
		return fmt.Errorf("create %s table: %w", p.table, err)
	}
	return nil
}

// Get returns the stored value or ErrNotFound.
func (p *PgKV) Get(ctx context.Context, key string) (string, error) {
	query, args, err := builder().
		Select("value").
		From(p.table).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select: %w", err)
	}

	var value string
	err = p.db.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select preference %q: %w", key, err)
	}
	return value, nil
}

// Set upserts the value.
func (p *PgKV) Set(ctx context.Context, key, value string) error {
	query, args, err := builder().
		Insert(p.table).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert preference %q: %w", key, err)
	}
	return nil
}

// HealthCheck pings the database.
func (p *PgKV) HealthCheck(ctx context.Context) error {
	return p.db.Ping(ctx)
}
