// Package pg implementa el registry sobre PostgreSQL (tabla registry_resources).
package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
	"github.com/dropDatabas3/i18nmail/internal/registry"
)

func init() {
	registry.RegisterAdapter(&postgresAdapter{})
}

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Connect(ctx context.Context, cfg registry.AdapterConfig) (registry.Connection, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("pg: DSN is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}

	if cfg.Migrate {
		applied, err := migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("pg: migrate: %w", err)
		}
		logger.L().Info("registry migrations applied",
			logger.Driver("postgres"),
			logger.Count(len(applied)),
		)
	}
	return &Store{pool: pool}, nil
}

// Store es un ResourceStore sobre una tabla de PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore envuelve un pool existente (no aplica migraciones).
func NewStore(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

func (s *Store) Name() string                   { return "postgres" }
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// likePrefix escapa p para usarlo como prefijo en LIKE (los locales tienen '_').
func likePrefix(p string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(p) + "/%"
}

func (s *Store) Exists(ctx context.Context, key repository.ResourceKey) (bool, error) {
	if err := registry.ValidateKey(key); err != nil {
		return false, err
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM registry_resources WHERE tenant = $1 AND path = $2)`,
		key.Tenant, key.FullPath(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pg: exists: %w", err)
	}
	return exists, nil
}

func (s *Store) Get(ctx context.Context, key repository.ResourceKey) (*repository.Resource, error) {
	if err := registry.ValidateKey(key); err != nil {
		return nil, err
	}
	p := key.FullPath()

	res := &repository.Resource{}
	err := s.pool.QueryRow(ctx,
		`SELECT is_collection, properties FROM registry_resources WHERE tenant = $1 AND path = $2`,
		key.Tenant, p,
	).Scan(&res.Collection, &res.Properties)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("pg: get: %w", err)
	}
	if res.Properties == nil {
		res.Properties = map[string]string{}
	}
	if !res.Collection {
		return res, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT path FROM registry_resources WHERE tenant = $1 AND parent = $2 AND path <> $2 ORDER BY path`,
		key.Tenant, p,
	)
	if err != nil {
		return nil, fmt.Errorf("pg: list children: %w", err)
	}
	children, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("pg: scan children: %w", err)
	}
	res.Children = children
	return res, nil
}

func (s *Store) Put(ctx context.Context, res *repository.Resource, key repository.ResourceKey) error {
	if err := registry.ValidateKey(key); err != nil {
		return err
	}
	p := key.FullPath()
	props := res.Properties
	if props == nil {
		props = map[string]string{}
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, anc := range registry.Ancestors(p) {
			if _, err := tx.Exec(ctx,
				`INSERT INTO registry_resources (tenant, path, parent, is_collection)
				 VALUES ($1, $2, $3, TRUE)
				 ON CONFLICT (tenant, path) DO NOTHING`,
				key.Tenant, anc, repository.ParentPath(anc),
			); err != nil {
				return fmt.Errorf("pg: put ancestor %s: %w", anc, err)
			}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO registry_resources (tenant, path, parent, is_collection, properties)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (tenant, path) DO UPDATE
			 SET is_collection = EXCLUDED.is_collection,
			     properties    = EXCLUDED.properties,
			     updated_at    = now()`,
			key.Tenant, p, repository.ParentPath(p), res.Collection, props,
		); err != nil {
			return fmt.Errorf("pg: put: %w", err)
		}
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, key repository.ResourceKey) error {
	if err := registry.ValidateKey(key); err != nil {
		return err
	}
	p := key.FullPath()
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM registry_resources WHERE tenant = $1 AND (path = $2 OR path LIKE $3)`,
		key.Tenant, p, likePrefix(p),
	); err != nil {
		return fmt.Errorf("pg: delete: %w", err)
	}
	return nil
}
