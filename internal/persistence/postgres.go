package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-router/internal/config"
	"github.com/spec-kit/ticket-router/internal/department"
)

// Postgres owns one pgx pool per department store. Every pool points at the same
// server and database; the store identifier is the schema the pool's search_path
// is pinned to.
type Postgres struct {
	pools map[string]*pgxpool.Pool
	order []string
}

// NewPostgres builds a pool for every registered department. A store that does not
// answer the initial ping is logged and kept; its requests fail until it recovers.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, registry *department.Registry, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, errors.New("POSTGRES_DSN not provided")
	}

	pg := &Postgres{pools: make(map[string]*pgxpool.Pool, registry.Len())}
	for _, dept := range registry.All() {
		poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			pg.Close()
			return nil, err
		}
		poolCfg.ConnConfig.RuntimeParams["search_path"] = dept.Store
		poolCfg.ConnConfig.RuntimeParams["application_name"] = "ticket-router:" + dept.Store

		if cfg.MaxConns > 0 {
			poolCfg.MaxConns = cfg.MaxConns
		}
		if cfg.MinConns > 0 {
			poolCfg.MinConns = cfg.MinConns
		}
		if cfg.ConnMaxIdleSec > 0 {
			poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
		}
		if cfg.ConnMaxLifeSec > 0 {
			poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			pg.Close()
			return nil, fmt.Errorf("pool for store %s: %w", dept.Store, err)
		}
		pg.pools[dept.Store] = pool
		pg.order = append(pg.order, dept.Store)

		if err := pool.Ping(ctx); err != nil {
			logger.Warn("department store unreachable at startup",
				zap.String("department", dept.Name),
				zap.String("store", dept.Store),
				zap.Error(err))
			continue
		}
		logger.Info("connected to department store",
			zap.String("department", dept.Name),
			zap.String("store", dept.Store))
	}
	return pg, nil
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p == nil {
		return
	}
	for _, pool := range p.pools {
		pool.Close()
	}
}

// Conns exposes the pools keyed by store identifier.
func (p *Postgres) Conns() map[string]Querier {
	conns := make(map[string]Querier, len(p.pools))
	for store, pool := range p.pools {
		conns[store] = pool
	}
	return conns
}

// Ping checks every store and reports the first failure.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || len(p.pools) == 0 {
		return errors.New("no department stores configured")
	}
	for _, store := range p.order {
		if err := p.pools[store].Ping(ctx); err != nil {
			return fmt.Errorf("store %s: %w", store, err)
		}
	}
	return nil
}
