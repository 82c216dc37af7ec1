// Package pg implements the domain repositories on PostgreSQL via pgxpool.
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/qrcall/internal/observability/logger"
)

// Store owns the connection pool and exposes the repository implementations.
type Store struct {
	pool *pgxpool.Pool
}

// Tuning carries optional pool settings from config.
type Tuning struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

// New creates the pool. Startup is non-blocking: a failed initial ping is
// logged, not fatal, so the service can come up while the DB restarts.
func New(ctx context.Context, dsn string, tuning Tuning) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if tuning.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(tuning.MaxOpenConns)
	}
	// pgxpool has no idle cap; MinConns is the closest knob.
	if tuning.MaxIdleConns > 0 {
		pcfg.MinConns = int32(tuning.MaxIdleConns)
	}
	if tuning.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(tuning.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Named("pg").Warn("startup ping failed", logger.Err(err))
	} else {
		logger.Named("pg").Info("pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}

	return &Store{pool: pool}, nil
}

// Pool exposes the raw pool for migrations and metrics.
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close closes the pool (idempotent).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// QRCodes returns the QRRepository implementation.
func (s *Store) QRCodes() *QRRepo { return &QRRepo{pool: s.pool} }

// Analytics returns the AnalyticsRepository implementation.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{pool: s.pool} }

// Users returns the UserDirectory implementation backed by the local
// app_user mirror.
func (s *Store) Users() *UserDirectory { return &UserDirectory{pool: s.pool} }
