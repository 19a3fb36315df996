// Package postgres implements the repository ports on PostgreSQL via pgx.
package postgres

import (
    "context"
    "errors"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

type DB struct {
    Pool *pgxpool.Pool
}

func Connect(ctx context.Context, url string) (*DB, error) {
    cfg, err := pgxpool.ParseConfig(url)
    if err != nil {
        return nil, err
    }
    cfg.MaxConns = 10
    cfg.HealthCheckPeriod = 30 * time.Second
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil {
        return nil, err
    }
    if err := pool.Ping(ctx); err != nil {
        pool.Close()
        return nil, err
    }
    return &DB{Pool: pool}, nil
}

func (db *DB) Close() { db.Pool.Close() }

// notFound maps pgx's no-rows error to the domain sentinel.
func notFound(err error) error {
    if errors.Is(err, pgx.ErrNoRows) {
        return domain.ErrNotFound
    }
    return err
}

// nullTime turns a zero time into SQL NULL for open-ended range filters.
func nullTime(t time.Time) any {
    if t.IsZero() {
        return nil
    }
    return t
}
