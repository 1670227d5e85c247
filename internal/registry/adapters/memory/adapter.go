// Package memory implementa un registry en memoria del proceso.
// Pensado para desarrollo y tests; no persiste nada.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
	"github.com/dropDatabas3/i18nmail/internal/registry"
)

func init() {
	registry.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg registry.AdapterConfig) (registry.Connection, error) {
	return New(), nil
}

type node struct {
	collection bool
	props      map[string]string
}

// Store es un ResourceStore en memoria, seguro para uso concurrente.
type Store struct {
	mu      sync.RWMutex
	tenants map[string]map[string]*node
}

// New crea un Store vacío.
func New() *Store {
	return &Store{tenants: make(map[string]map[string]*node)}
}

func (s *Store) Name() string                   { return "memory" }
func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }

func (s *Store) Exists(ctx context.Context, key repository.ResourceKey) (bool, error) {
	if err := registry.ValidateKey(key); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tenants[key.Tenant][key.FullPath()]
	return ok, nil
}

func (s *Store) Get(ctx context.Context, key repository.ResourceKey) (*repository.Resource, error) {
	if err := registry.ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := s.tenants[key.Tenant]
	p := key.FullPath()
	n, ok := nodes[p]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res := &repository.Resource{Collection: n.collection, Properties: make(map[string]string, len(n.props))}
	for k, v := range n.props {
		res.Properties[k] = v
	}
	if n.collection {
		res.Children = []string{}
		for child := range nodes {
			if child != p && repository.ParentPath(child) == p {
				res.Children = append(res.Children, child)
			}
		}
		sort.Strings(res.Children)
	}
	return res, nil
}

func (s *Store) Put(ctx context.Context, res *repository.Resource, key repository.ResourceKey) error {
	if err := registry.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, ok := s.tenants[key.Tenant]
	if !ok {
		nodes = make(map[string]*node)
		s.tenants[key.Tenant] = nodes
	}
	p := key.FullPath()
	for _, anc := range registry.Ancestors(p) {
		if _, ok := nodes[anc]; !ok {
			nodes[anc] = &node{collection: true, props: map[string]string{}}
		}
	}
	n := &node{collection: res.Collection, props: make(map[string]string, len(res.Properties))}
	for k, v := range res.Properties {
		n.props[k] = v
	}
	nodes[p] = n
	return nil
}

func (s *Store) Delete(ctx context.Context, key repository.ResourceKey) error {
	if err := registry.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := key.FullPath()
	for candidate := range s.tenants[key.Tenant] {
		if registry.IsDescendant(candidate, p) {
			delete(s.tenants[key.Tenant], candidate)
		}
	}
	return nil
}
