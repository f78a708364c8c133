// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package persist

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// atlasRowID is the fixed single-row key spec.md §6 specifies for both
// the cursor record and the GraphState snapshot ("id: atlas").
const atlasRowID = "atlas"

// PostgresStore is the production Store, backed by jackc/pgx/v5's pool
// client. Save writes the cursor row and the state-snapshot row inside
// one transaction, matching spec.md §6's crash-consistency requirement
// ("Both must be updated in a single transaction").
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore dials dsn, creates the atlas_cursor/atlas_state
// tables if they don't already exist, and returns a ready Store.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("persist: connecting to postgres: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("persist: migrating schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS atlas_cursor (
	id TEXT PRIMARY KEY,
	cursor TEXT NOT NULL,
	block_number TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS atlas_state (
	id TEXT PRIMARY KEY,
	state BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	_, err := pool.Exec(ctx, ddl)
	return err
}

// Save persists cp's cursor and GraphState snapshot in a single
// transaction, upserting the fixed "atlas" row in both tables.
func (s *PostgresStore) Save(ctx context.Context, cp Checkpoint) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("persist: begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op once Commit succeeds

	_, err = tx.Exec(ctx, `
INSERT INTO atlas_cursor (id, cursor, block_number) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET cursor = EXCLUDED.cursor, block_number = EXCLUDED.block_number
`, atlasRowID, cp.Cursor, strconv.FormatUint(cp.BlockNumber, 10))
	if err != nil {
		return fmt.Errorf("persist: upserting cursor: %w", err)
	}

	_, err = tx.Exec(ctx, `
INSERT INTO atlas_state (id, state, updated_at) VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()
`, atlasRowID, cp.State)
	if err != nil {
		return fmt.Errorf("persist: upserting state snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("persist: commit transaction: %w", err)
	}
	return nil
}

// Load reads back the cursor and state snapshot atomically written by
// Save. Returns ErrNotFound if either row has never been written.
func (s *PostgresStore) Load(ctx context.Context) (Checkpoint, error) {
	var cp Checkpoint
	var blockStr string

	row := s.pool.QueryRow(ctx, `SELECT cursor, block_number FROM atlas_cursor WHERE id = $1`, atlasRowID)
	if err := row.Scan(&cp.Cursor, &blockStr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Checkpoint{}, ErrNotFound
		}
		return Checkpoint{}, fmt.Errorf("persist: loading cursor: %w", err)
	}

	block, err := strconv.ParseUint(blockStr, 10, 64)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("persist: parsing block_number: %w", err)
	}
	cp.BlockNumber = block

	row = s.pool.QueryRow(ctx, `SELECT state FROM atlas_state WHERE id = $1`, atlasRowID)
	if err := row.Scan(&cp.State); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Checkpoint{}, ErrNotFound
		}
		return Checkpoint{}, fmt.Errorf("persist: loading state snapshot: %w", err)
	}

	return cp, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
