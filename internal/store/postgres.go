package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps each collection as one JSONB array row in the collections table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a store on an open pool. The schema comes from database.Migrate.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Read returns the records of a collection.
func (p *Postgres) Read(ctx context.Context, collection string) ([]json.RawMessage, error) {
	const q = `SELECT records FROM collections WHERE name = $1`
	var body []byte
	err := p.pool.QueryRow(ctx, q, collection).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	return unmarshalRecords(body)
}

// Write upserts the collection row.
func (p *Postgres) Write(ctx context.Context, collection string, records []json.RawMessage) error {
	body, err := marshalRecords(records)
	if err != nil {
		return err
	}
	const q = `INSERT INTO collections (name, records, updated_at) VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (name) DO UPDATE SET records = EXCLUDED.records, updated_at = NOW()`
	_, err = p.pool.Exec(ctx, q, collection, string(body))
	return err
}

// Update locks the collection row for the duration of fn.
func (p *Postgres) Update(ctx context.Context, collection string, fn UpdateFunc) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const ensure = `INSERT INTO collections (name, records) VALUES ($1, '[]'::jsonb) ON CONFLICT (name) DO NOTHING`
	if _, err := tx.Exec(ctx, ensure, collection); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	var body []byte
	if err := tx.QueryRow(ctx, `SELECT records FROM collections WHERE name = $1 FOR UPDATE`, collection).Scan(&body); err != nil {
		return fmt.Errorf("lock collection: %w", err)
	}
	records, err := unmarshalRecords(body)
	if err != nil {
		return err
	}
	next, err := fn(records)
	if err != nil {
		return err
	}
	out, err := marshalRecords(next)
	if err != nil {
		return err
	}
	const q = `UPDATE collections SET records = $2::jsonb, updated_at = NOW() WHERE name = $1`
	if _, err := tx.Exec(ctx, q, collection, string(out)); err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	return tx.Commit(ctx)
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
