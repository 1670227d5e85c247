package registry

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
)

// CachedStore es un ResourceStore que cachea lecturas (Get/Exists) en memoria.
//
// Las escrituras hechas a través del decorador invalidan todo el tenant afectado.
// Escrituras hechas por otros procesos se ven recién cuando expira el TTL.
//
// Cada tenant tiene una generación que se incrementa al invalidar. Una lectura
// solo se cachea si la generación no cambió mientras consultaba el store.
type CachedStore struct {
	next  repository.ResourceStore
	cache *gocache.Cache
	sf    singleflight.Group
	ttl   time.Duration

	mu   sync.Mutex
	gens map[string]uint64
}

// NewCachedStore envuelve next con un cache de lecturas. ttl <= 0 usa 30s.
func NewCachedStore(next repository.ResourceStore, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedStore{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
		gens:  map[string]uint64{},
	}
}

func tenantPrefix(tenant string) string { return tenant + "|" }

func cacheKey(op string, key repository.ResourceKey) string {
	return tenantPrefix(key.Tenant) + op + "|" + key.FullPath()
}

func (c *CachedStore) generation(tenant string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[tenant]
}

// setIfCurrent cachea v solo si el tenant no se invalidó desde gen.
func (c *CachedStore) setIfCurrent(tenant string, gen uint64, k string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[tenant] == gen {
		c.cache.Set(k, v, c.ttl)
	}
}

func (c *CachedStore) Exists(ctx context.Context, key repository.ResourceKey) (bool, error) {
	k := cacheKey("exists", key)
	if v, ok := c.cache.Get(k); ok {
		return v.(bool), nil
	}
	gen := c.generation(key.Tenant)
	ok, err := c.next.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	c.setIfCurrent(key.Tenant, gen, k, ok)
	return ok, nil
}

func (c *CachedStore) Get(ctx context.Context, key repository.ResourceKey) (*repository.Resource, error) {
	k := cacheKey("get", key)
	if v, ok := c.cache.Get(k); ok {
		return CloneResource(v.(*repository.Resource)), nil
	}

	// Una lectura posterior a una escritura no se suma a un vuelo anterior.
	gen := c.generation(key.Tenant)
	v, err, _ := c.sf.Do(k+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		res, err := c.next.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		c.setIfCurrent(key.Tenant, gen, k, CloneResource(res))
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return CloneResource(v.(*repository.Resource)), nil
}

func (c *CachedStore) Put(ctx context.Context, res *repository.Resource, key repository.ResourceKey) error {
	defer c.invalidate(key.Tenant)
	return c.next.Put(ctx, res, key)
}

func (c *CachedStore) Delete(ctx context.Context, key repository.ResourceKey) error {
	defer c.invalidate(key.Tenant)
	return c.next.Delete(ctx, key)
}

// invalidate borra todas las entradas del tenant (los hijos de los ancestros cambian).
func (c *CachedStore) invalidate(tenant string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[tenant]++
	prefix := tenantPrefix(tenant)
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

// Flush vacía el cache completo.
func (c *CachedStore) Flush() { c.cache.Flush() }
