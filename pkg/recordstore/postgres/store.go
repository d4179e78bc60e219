// Package postgres implements recordstore.Store on top of
// database/sql using the pgx stdlib driver. Every conditional write is a
// single parameterized statement followed by a RowsAffected() check;
// the whole batch runs inside one *sql.Tx so a zero-row op anywhere
// rolls back everything that came before it in the same request.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/cuemby/vss/pkg/log"
	"github.com/cuemby/vss/pkg/recordstore"
	"github.com/cuemby/vss/pkg/types"
)

// PoolConfig mirrors the connection-pool knobs of spec.md §6.
type PoolConfig struct {
	MaxPoolSize          int
	MinimumIdle          int
	ConnectionTimeoutMs  int
	IdleTimeoutMs        int
	MaxLifetimeMs        int
}

// DefaultPoolConfig matches sensible defaults for a small service; every
// field is overridable via configuration, see pkg/config.
var DefaultPoolConfig = PoolConfig{
	MaxPoolSize:         10,
	MinimumIdle:         2,
	ConnectionTimeoutMs: 5000,
	IdleTimeoutMs:       600000,
	MaxLifetimeMs:       1800000,
}

// Store is a Postgres-backed recordstore.Store.
type Store struct {
	db *sql.DB
}

// Open connects to dsn (a standard Postgres connection string) and
// configures the pool per cfg. It does not create the schema; run the
// "migrate" subcommand (or execute Schema directly) first.
func Open(dsn string, cfg PoolConfig) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("recordstore/postgres: open: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxPoolSize)
	db.SetMaxIdleConns(cfg.MinimumIdle)
	db.SetConnMaxIdleTime(time.Duration(cfg.IdleTimeoutMs) * time.Millisecond)
	db.SetConnMaxLifetime(time.Duration(cfg.MaxLifetimeMs) * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ConnectionTimeoutMs)*time.Millisecond)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("recordstore/postgres: ping: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, user, store, key string) (types.Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT value, version, created_at, last_updated_at
		FROM vss_records
		WHERE user_token = $1 AND store_id = $2 AND key = $3`,
		user, store, key)

	var rec types.Record
	rec.UserToken, rec.StoreID, rec.Key = user, store, key
	err := row.Scan(&rec.Value, &rec.Version, &rec.CreatedAt, &rec.LastUpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Record{}, false, nil
	}
	if err != nil {
		return types.Record{}, false, fmt.Errorf("recordstore/postgres: get: %w", err)
	}
	return rec, true, nil
}

func (s *Store) ExecuteBatch(ctx context.Context, user, store string, ops []recordstore.Op) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recordstore/postgres: begin: %w", err)
	}

	for _, op := range ops {
		if err := execOp(ctx, tx, user, store, op); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Logger.Error().Err(rbErr).Msg("recordstore/postgres: rollback failed")
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recordstore/postgres: commit: %w", err)
	}
	return nil
}

func execOp(ctx context.Context, tx *sql.Tx, user, store string, op recordstore.Op) error {
	var (
		res sql.Result
		err error
	)

	switch op.Kind {
	case recordstore.OpInsertIfAbsent:
		res, err = tx.ExecContext(ctx, `
			INSERT INTO vss_records (user_token, store_id, key, value, version, created_at, last_updated_at)
			VALUES ($1, $2, $3, $4, 1, CURRENT_DATE, CURRENT_DATE)
			ON CONFLICT (user_token, store_id, key) DO NOTHING`,
			user, store, op.Key, op.Value)

	case recordstore.OpUpdateIfVersion:
		res, err = tx.ExecContext(ctx, `
			UPDATE vss_records
			SET value = $1, version = $2, last_updated_at = CURRENT_DATE
			WHERE user_token = $3 AND store_id = $4 AND key = $5 AND version = $6`,
			op.Value, op.ExpectedVersion+1, user, store, op.Key, op.ExpectedVersion)

	case recordstore.OpUpsert:
		res, err = tx.ExecContext(ctx, `
			INSERT INTO vss_records (user_token, store_id, key, value, version, created_at, last_updated_at)
			VALUES ($1, $2, $3, $4, 1, CURRENT_DATE, CURRENT_DATE)
			ON CONFLICT (user_token, store_id, key)
			DO UPDATE SET value = EXCLUDED.value, version = 1, last_updated_at = CURRENT_DATE`,
			user, store, op.Key, op.Value)

	case recordstore.OpDeleteIfVersion:
		res, err = tx.ExecContext(ctx, `
			DELETE FROM vss_records
			WHERE user_token = $1 AND store_id = $2 AND key = $3 AND version = $4`,
			user, store, op.Key, op.ExpectedVersion)

	case recordstore.OpDeleteUnconditional:
		_, err = tx.ExecContext(ctx, `
			DELETE FROM vss_records
			WHERE user_token = $1 AND store_id = $2 AND key = $3`,
			user, store, op.Key)
		return err

	default:
		return fmt.Errorf("recordstore/postgres: unknown op kind %d", op.Kind)
	}

	if err != nil {
		return fmt.Errorf("recordstore/postgres: exec: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recordstore/postgres: rows affected: %w", err)
	}
	if affected == 0 {
		return recordstore.ErrConflict
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, user, store, prefix, afterKey string, limit int) ([]types.Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, version, created_at, last_updated_at
		FROM vss_records
		WHERE user_token = $1 AND store_id = $2
		  AND key <> $3
		  AND ($4 = '' OR key > $4)
		  AND ($5 = '' OR left(key, length($5)) = $5)
		ORDER BY key ASC
		LIMIT $6`,
		user, store, types.GlobalVersionKey, afterKey, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("recordstore/postgres: scan: %w", err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var rec types.Record
		rec.UserToken, rec.StoreID = user, store
		if err := rows.Scan(&rec.Key, &rec.Value, &rec.Version, &rec.CreatedAt, &rec.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("recordstore/postgres: scan row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recordstore/postgres: scan rows: %w", err)
	}
	return out, nil
}
