package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
)

// uniqueViolation is the SQLSTATE reported on duplicate key inserts.
const uniqueViolation = "23505"

// PGDeduplicator - ...
type PGDeduplicator struct {
	pool *pgxpool.Pool
}

// InitPGDeduplicator - ...
func InitPGDeduplicator(cfg Config) (Deduplicator, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.ConnectConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	return &PGDeduplicator{
		pool: pool,
	}, nil
}

// Seen - ...
func (repo *PGDeduplicator) Seen(ctx context.Context, messageID string) (bool, error) {
	query := `insert into t_seen_message(message_id, seen_dt) values ($1, localtimestamp)`
	_, err := repo.pool.Exec(ctx, query, messageID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return true, nil
		}
		return false, err
	}
	return false, nil
}
