// Package redis implementa el registry sobre Redis.
//
// Layout de keys:
//
//	{prefix}:{tenant}:node:{path}      hash: collection ("1"/"0"), props (JSON)
//	{prefix}:{tenant}:children:{path}  set con los paths de los hijos inmediatos
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
	"github.com/dropDatabas3/i18nmail/internal/registry"
)

const defaultPrefix = "i18nmail"

func init() {
	registry.RegisterAdapter(&redisAdapter{})
}

type redisAdapter struct{}

func (a *redisAdapter) Name() string { return "redis" }

func (a *redisAdapter) Connect(ctx context.Context, cfg registry.AdapterConfig) (registry.Connection, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Verificar conexión
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return New(rdb, cfg.Prefix), nil
}

// Store es un ResourceStore sobre Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// New envuelve un cliente existente. Un prefix vacío usa "i18nmail".
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Name() string                   { return "redis" }
func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }
func (s *Store) Close() error                   { return s.client.Close() }

func (s *Store) nodeKey(tenant, p string) string {
	return s.prefix + ":" + tenant + ":node:" + p
}

func (s *Store) childrenKey(tenant, p string) string {
	return s.prefix + ":" + tenant + ":children:" + p
}

func (s *Store) Exists(ctx context.Context, key repository.ResourceKey) (bool, error) {
	if err := registry.ValidateKey(key); err != nil {
		return false, err
	}
	n, err := s.client.Exists(ctx, s.nodeKey(key.Tenant, key.FullPath())).Result()
	if err != nil {
		return false, fmt.Errorf("redis: exists: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Get(ctx context.Context, key repository.ResourceKey) (*repository.Resource, error) {
	if err := registry.ValidateKey(key); err != nil {
		return nil, err
	}
	p := key.FullPath()

	fields, err := s.client.HGetAll(ctx, s.nodeKey(key.Tenant, p)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get: %w", err)
	}
	if len(fields) == 0 {
		return nil, repository.ErrNotFound
	}

	res := &repository.Resource{Collection: fields["collection"] == "1", Properties: map[string]string{}}
	if raw := fields["props"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &res.Properties); err != nil {
			return nil, fmt.Errorf("redis: decode %s: %w", p, err)
		}
	}
	if !res.Collection {
		return res, nil
	}

	children, err := s.client.SMembers(ctx, s.childrenKey(key.Tenant, p)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: list children: %w", err)
	}
	sort.Strings(children)
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
	raw, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("redis: encode: %w", err)
	}
	collection := "0"
	if res.Collection {
		collection = "1"
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, anc := range registry.Ancestors(p) {
			pipe.HSetNX(ctx, s.nodeKey(key.Tenant, anc), "collection", "1")
			pipe.SAdd(ctx, s.childrenKey(key.Tenant, repository.ParentPath(anc)), anc)
		}
		pipe.SAdd(ctx, s.childrenKey(key.Tenant, repository.ParentPath(p)), p)
		pipe.HSet(ctx, s.nodeKey(key.Tenant, p), "collection", collection, "props", string(raw))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: put: %w", err)
	}
	return nil
}

// Delete recorre el subárbol por los sets de hijos y borra todo en una transacción.
func (s *Store) Delete(ctx context.Context, key repository.ResourceKey) error {
	if err := registry.ValidateKey(key); err != nil {
		return err
	}
	p := key.FullPath()

	var doomed []string
	queue := []string{p}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		doomed = append(doomed, cur)
		children, err := s.client.SMembers(ctx, s.childrenKey(key.Tenant, cur)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis: delete: %w", err)
		}
		queue = append(queue, children...)
	}

	keys := make([]string, 0, 2*len(doomed))
	for _, d := range doomed {
		keys = append(keys, s.nodeKey(key.Tenant, d), s.childrenKey(key.Tenant, d))
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		if p != repository.PathSeparator {
			pipe.SRem(ctx, s.childrenKey(key.Tenant, repository.ParentPath(p)), p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: delete: %w", err)
	}
	return nil
}
