package pg

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pingAttempts = 5
	pingDelay    = 2 * time.Second
)

// NewPool creates a new PostgreSQL connection pool with the provided configuration.
//
// The initial ping is retried a few times so that services starting together
// with the database (e.g. in docker-compose) do not fail on the first attempt.
func NewPool(cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, errx.Wrap(err)
	}

	poolConfig.MaxConns = cfg.PoolMaxConns
	poolConfig.MinConns = cfg.PoolMinConns
	poolConfig.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	poolConfig.MaxConnLifetime = cfg.PoolMaxConnLifetime

	pgPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	err = retry.Do(
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
			defer cancel()
			return pgPool.Ping(ctx)
		},
		retry.Attempts(pingAttempts),
		retry.Delay(pingDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		pgPool.Close()
		return nil, errx.Wrap(err)
	}

	return pgPool, nil
}
