package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
)

// mapStore es un ResourceStore mínimo que cuenta lecturas.
type mapStore struct {
	mu     sync.Mutex
	nodes  map[string]*repository.Resource
	gets   atomic.Int32
	exists atomic.Int32
	delay  time.Duration
	err    error
}

func newMapStore() *mapStore { return &mapStore{nodes: map[string]*repository.Resource{}} }

func (s *mapStore) k(key repository.ResourceKey) string { return key.Tenant + key.FullPath() }

func (s *mapStore) Exists(_ context.Context, key repository.ResourceKey) (bool, error) {
	s.exists.Add(1)
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[s.k(key)]
	return ok, nil
}

func (s *mapStore) Get(_ context.Context, key repository.ResourceKey) (*repository.Resource, error) {
	s.gets.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.nodes[s.k(key)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return CloneResource(r), nil
}

func (s *mapStore) Put(_ context.Context, res *repository.Resource, key repository.ResourceKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[s.k(key)] = CloneResource(res)
	return nil
}

func (s *mapStore) Delete(_ context.Context, key repository.ResourceKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, s.k(key))
	return nil
}

func TestCachedStore_CachesReads(t *testing.T) {
	ctx := context.Background()
	next := newMapStore()
	c := NewCachedStore(next, time.Minute)
	key := repository.Key("acme.com", "/identity/email/x")

	res := repository.NewResource()
	res.SetProperty("subject", "v1")
	require.NoError(t, c.Put(ctx, res, key))

	for i := 0; i < 3; i++ {
		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, "v1", got.Property("subject"))
		ok, err := c.Exists(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.EqualValues(t, 1, next.gets.Load())
	require.EqualValues(t, 1, next.exists.Load())
}

func TestCachedStore_ReturnsClones(t *testing.T) {
	ctx := context.Background()
	c := NewCachedStore(newMapStore(), time.Minute)
	key := repository.Key("acme.com", "/x")

	res := repository.NewResource()
	res.SetProperty("subject", "v1")
	require.NoError(t, c.Put(ctx, res, key))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	got.SetProperty("subject", "mutated")

	again, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "v1", again.Property("subject"))
}

func TestCachedStore_WritesInvalidateTenant(t *testing.T) {
	ctx := context.Background()
	next := newMapStore()
	c := NewCachedStore(next, time.Minute)
	a := repository.Key("acme.com", "/x")
	other := repository.Key("other.com", "/x")

	ok, err := c.Exists(ctx, a)
	require.NoError(t, err)
	require.False(t, ok)
	_, err = c.Exists(ctx, other)
	require.NoError(t, err)

	require.NoError(t, c.Put(ctx, repository.NewResource(), a))

	ok, err = c.Exists(ctx, a)
	require.NoError(t, err)
	require.True(t, ok, "put must invalidate cached negative lookup")

	// other.com sigue cacheado
	before := next.exists.Load()
	_, err = c.Exists(ctx, other)
	require.NoError(t, err)
	require.Equal(t, before, next.exists.Load())

	require.NoError(t, c.Delete(ctx, a))
	_, err = c.Get(ctx, a)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCachedStore_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	next := newMapStore()
	next.err = errors.New("boom")
	c := NewCachedStore(next, time.Minute)
	key := repository.Key("acme.com", "/x")

	_, err := c.Get(ctx, key)
	require.Error(t, err)
	_, err = c.Exists(ctx, key)
	require.Error(t, err)

	next.err = nil
	require.NoError(t, next.Put(ctx, repository.NewResource(), key))

	_, err = c.Get(ctx, key)
	require.NoError(t, err)
	ok, err := c.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCachedStore_CollapsesConcurrentGets(t *testing.T) {
	ctx := context.Background()
	next := newMapStore()
	next.delay = 50 * time.Millisecond
	c := NewCachedStore(next, time.Minute)
	key := repository.Key("acme.com", "/x")
	require.NoError(t, next.Put(ctx, repository.NewResource(), key))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(ctx, key)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Less(t, next.gets.Load(), int32(10))
}

func TestCachedStore_Flush(t *testing.T) {
	ctx := context.Background()
	next := newMapStore()
	c := NewCachedStore(next, 0)
	key := repository.Key("acme.com", "/x")

	_, _ = c.Exists(ctx, key)
	c.Flush()
	_, _ = c.Exists(ctx, key)
	require.EqualValues(t, 2, next.exists.Load())
}

// blockingStore lee el valor y se frena antes de devolverlo hasta que se cierre release.
type blockingStore struct {
	*mapStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		mapStore: newMapStore(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (s *blockingStore) hold() {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
}

func (s *blockingStore) Get(ctx context.Context, key repository.ResourceKey) (*repository.Resource, error) {
	res, err := s.mapStore.Get(ctx, key)
	s.hold()
	return res, err
}

func (s *blockingStore) Exists(ctx context.Context, key repository.ResourceKey) (bool, error) {
	ok, err := s.mapStore.Exists(ctx, key)
	s.hold()
	return ok, err
}

func TestCachedStore_GetRacingPutDoesNotCacheStaleValue(t *testing.T) {
	ctx := context.Background()
	next := newBlockingStore()
	c := NewCachedStore(next, time.Minute)
	key := repository.Key("acme.com", "/identity/email/x/en_us")

	old := repository.NewResource()
	old.SetProperty("subject", "old")
	require.NoError(t, next.mapStore.Put(ctx, old, key))

	done := make(chan string)
	go func() {
		res, err := c.Get(ctx, key)
		assert.NoError(t, err)
		done <- res.Property("subject")
	}()

	<-next.entered
	fresh := repository.NewResource()
	fresh.SetProperty("subject", "new")
	require.NoError(t, c.Put(ctx, fresh, key))
	close(next.release)
	require.Equal(t, "old", <-done)

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "new", got.Property("subject"))
}

func TestCachedStore_ExistsRacingPutDoesNotCacheStaleValue(t *testing.T) {
	ctx := context.Background()
	next := newBlockingStore()
	c := NewCachedStore(next, time.Minute)
	key := repository.Key("acme.com", "/identity/email/x")

	done := make(chan bool)
	go func() {
		ok, err := c.Exists(ctx, key)
		assert.NoError(t, err)
		done <- ok
	}()

	<-next.entered
	require.NoError(t, c.Put(ctx, repository.NewResource(), key))
	close(next.release)
	require.False(t, <-done)

	ok, err := c.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCachedStore_GetAfterPutDoesNotJoinOlderFlight(t *testing.T) {
	ctx := context.Background()
	next := newBlockingStore()
	c := NewCachedStore(next, time.Minute)
	key := repository.Key("acme.com", "/x")

	old := repository.NewResource()
	old.SetProperty("subject", "old")
	require.NoError(t, next.mapStore.Put(ctx, old, key))

	first := make(chan string)
	go func() {
		res, err := c.Get(ctx, key)
		assert.NoError(t, err)
		first <- res.Property("subject")
	}()
	<-next.entered

	fresh := repository.NewResource()
	fresh.SetProperty("subject", "new")
	require.NoError(t, c.Put(ctx, fresh, key))

	// La lectura nueva no queda esperando al vuelo frenado.
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "new", got.Property("subject"))

	close(next.release)
	require.Equal(t, "old", <-first)
}
