package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createClientLists = `
	CREATE TABLE IF NOT EXISTS client_lists (
		key        TEXT PRIMARY KEY,
		items      JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresKV stores each list as a JSON array in the client_lists table.
type PostgresKV struct {
	pool *pgxpool.Pool
}

// NewPostgresKV wraps pool and makes sure the table exists.
func NewPostgresKV(ctx context.Context, pool *pgxpool.Pool) (*PostgresKV, error) {
	if _, err := pool.Exec(ctx, createClientLists); err != nil {
		return nil, fmt.Errorf("postgres: failed to create client_lists: %w", err)
	}
	return &PostgresKV{pool: pool}, nil
}

// Get returns the list stored at key.
func (p *PostgresKV) Get(ctx context.Context, key string) ([]string, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT items FROM client_lists WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to read %s: %w", key, err)
	}

	items := []string{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("postgres: corrupt list %s: %w", key, err)
	}
	return items, nil
}

// Set upserts the list stored at key.
func (p *PostgresKV) Set(ctx context.Context, key string, items []string) error {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO client_lists (key, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET items = EXCLUDED.items, updated_at = now()
	`
	if _, err := p.pool.Exec(ctx, query, key, raw); err != nil {
		return fmt.Errorf("postgres: failed to save %s: %w", key, err)
	}
	return nil
}
