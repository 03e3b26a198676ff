package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityRange/internal/model"
	"liquidityRange/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS range_opened_events (
	id BIGSERIAL PRIMARY KEY,
	caller TEXT NOT NULL,
	pool_address TEXT NOT NULL,
	width INTEGER NOT NULL,
	tick_lower INTEGER NOT NULL,
	tick_upper INTEGER NOT NULL,
	liquidity NUMERIC(78, 0) NOT NULL,
	amount0 NUMERIC(78, 0) NOT NULL,
	amount1 NUMERIC(78, 0) NOT NULL,
	opened_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS range_opened_events_pool_idx
	ON range_opened_events (pool_address, opened_at);
`

// Store provides Postgres persistence for range notifications.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the events table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutRangeOpened inserts events in one batch.
func (s *Store) PutRangeOpened(ctx context.Context, events ...model.RangeOpened) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		rec := event.Record()
		batch.Queue(`
			INSERT INTO range_opened_events (
				caller, pool_address, width, tick_lower, tick_upper, liquidity, amount0, amount1, opened_at
			) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9)
		`,
			rec.Caller,
			rec.Pool,
			int32(rec.Width),
			rec.TickLower,
			rec.TickUpper,
			rec.Liquidity,
			rec.Amount0,
			rec.Amount1,
			event.At.UTC(),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert range event: %w", err)
		}
	}
	return nil
}

// CountByPool returns how many events were stored for a pool.
func (s *Store) CountByPool(ctx context.Context, pool string) (int64, error) {
	var count int64
	row := s.pool.QueryRow(ctx, `SELECT count(*) FROM range_opened_events WHERE pool_address=$1`, pool)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Latest returns the most recent event stored for a pool.
func (s *Store) Latest(ctx context.Context, pool string) (model.RangeOpenedRecord, bool, error) {
	var rec model.RangeOpenedRecord
	var width int32
	row := s.pool.QueryRow(ctx, `
		SELECT caller, pool_address, width, tick_lower, tick_upper,
			liquidity::text, amount0::text, amount1::text,
			to_char(opened_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		FROM range_opened_events
		WHERE pool_address=$1
		ORDER BY opened_at DESC, id DESC
		LIMIT 1
	`, pool)
	err := row.Scan(&rec.Caller, &rec.Pool, &width, &rec.TickLower, &rec.TickUpper,
		&rec.Liquidity, &rec.Amount0, &rec.Amount1, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RangeOpenedRecord{}, false, nil
		}
		return model.RangeOpenedRecord{}, false, err
	}
	rec.Width = uint32(width)
	return rec, true, nil
}
