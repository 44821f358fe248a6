package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSnapshotter keeps the snapshot document in the single-row
// state_snapshots table (see db/ migrations).
type PostgresSnapshotter struct {
	pool *pgxpool.Pool
}

func NewPostgresSnapshotter(pool *pgxpool.Pool) *PostgresSnapshotter {
	return &PostgresSnapshotter{pool: pool}
}

func (p *PostgresSnapshotter) Load(ctx context.Context) (Snapshot, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, "SELECT document FROM state_snapshots WHERE id = 1").Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: select snapshot: %v", ErrPersistence, err)
	}
	return decodeSnapshot(doc)
}

func (p *PostgresSnapshotter) Save(ctx context.Context, snap Snapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: marshal snapshot: %v", ErrPersistence, err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO state_snapshots (id, document, updated_at)
		 VALUES (1, @document, now())
		 ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		pgx.NamedArgs{"document": string(doc)})
	if err != nil {
		return fmt.Errorf("%w: upsert snapshot: %v", ErrPersistence, err)
	}
	return nil
}

// NewPool opens a pgx pool for dbURL. Simple protocol avoids stale cached
// plans after migrations change the table.
func NewPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
