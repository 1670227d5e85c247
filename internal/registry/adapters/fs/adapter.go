// Package fs implementa el registry sobre el FileSystem.
//
// Cada nodo es un directorio con un archivo _node.yaml:
//
//	<root>/tenants/<tenant>/registry/identity/email/accountconfirmation/_node.yaml
//	<root>/tenants/<tenant>/registry/identity/email/accountconfirmation/en_us/_node.yaml
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
	"github.com/dropDatabas3/i18nmail/internal/registry"
)

const nodeFile = "_node.yaml"

func init() {
	registry.RegisterAdapter(&fsAdapter{})
}

type fsAdapter struct{}

func (a *fsAdapter) Name() string { return "fs" }

func (a *fsAdapter) Connect(ctx context.Context, cfg registry.AdapterConfig) (registry.Connection, error) {
	return Open(cfg.FSRoot)
}

// Open crea (si hace falta) el directorio raíz y retorna el store.
func Open(root string) (*Store, error) {
	if root == "" {
		root = "data"
	}
	info, err := os.Stat(root)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("fs: root path is not a directory: %s", root)
	case err != nil && os.IsNotExist(err):
		if mkErr := os.MkdirAll(root, 0o755); mkErr != nil {
			return nil, fmt.Errorf("fs: failed to create root path %s: %w", root, mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("fs: root path error: %w", err)
	}
	return &Store{root: root}, nil
}

// Store es un ResourceStore respaldado por archivos YAML.
type Store struct {
	root string
	mu   sync.RWMutex
}

// nodeYAML es el formato en disco de un nodo.
type nodeYAML struct {
	Collection bool              `yaml:"collection"`
	Properties map[string]string `yaml:"properties"`
}

func (s *Store) Name() string { return "fs" }

func (s *Store) Ping(ctx context.Context) error {
	_, err := os.Stat(s.root)
	return err
}

func (s *Store) Close() error { return nil }

// ─── Helpers ───

func (s *Store) tenantRegistry(tenant string) string {
	return filepath.Join(s.root, "tenants", tenant, "registry")
}

func (s *Store) nodeDir(key repository.ResourceKey) string {
	return s.dirFor(key.Tenant, key.FullPath())
}

func (s *Store) dirFor(tenant, p string) string {
	rel := strings.TrimPrefix(repository.CleanPath(p), repository.PathSeparator)
	return filepath.Join(s.tenantRegistry(tenant), filepath.FromSlash(rel))
}

func (s *Store) readNode(dir string) (*nodeYAML, error) {
	data, err := os.ReadFile(filepath.Join(dir, nodeFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("fs: read node: %w", err)
	}
	var n nodeYAML
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("fs: parse node %s: %w", dir, err)
	}
	if n.Properties == nil {
		n.Properties = map[string]string{}
	}
	return &n, nil
}

func (s *Store) writeNode(dir string, n nodeYAML) error {
	data, err := yaml.Marshal(n)
	if err != nil {
		return fmt.Errorf("fs: marshal node: %w", err)
	}
	if err := replaceNodeFile(dir, data); err != nil {
		return fmt.Errorf("fs: write node: %w", err)
	}
	return nil
}

// ─── ResourceStore ───

func (s *Store) Exists(ctx context.Context, key repository.ResourceKey) (bool, error) {
	if err := registry.ValidateKey(key); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(filepath.Join(s.nodeDir(key), nodeFile))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("fs: stat node: %w", err)
}

func (s *Store) Get(ctx context.Context, key repository.ResourceKey) (*repository.Resource, error) {
	if err := registry.ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := s.nodeDir(key)
	n, err := s.readNode(dir)
	if err != nil {
		return nil, err
	}
	res := &repository.Resource{Collection: n.Collection, Properties: n.Properties}
	if !n.Collection {
		return res, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("fs: read children: %w", err)
	}
	p := key.FullPath()
	res.Children = []string{}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, e.Name(), nodeFile)); err != nil {
			continue
		}
		res.Children = append(res.Children, repository.CleanPath(p+repository.PathSeparator+e.Name()))
	}
	return res, nil
}

func (s *Store) Put(ctx context.Context, res *repository.Resource, key repository.ResourceKey) error {
	if err := registry.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := key.FullPath()
	for _, anc := range registry.Ancestors(p) {
		dir := s.dirFor(key.Tenant, anc)
		if _, err := os.Stat(filepath.Join(dir, nodeFile)); err == nil {
			continue
		}
		if err := s.writeNode(dir, nodeYAML{Collection: true, Properties: map[string]string{}}); err != nil {
			return err
		}
	}

	props := make(map[string]string, len(res.Properties))
	for k, v := range res.Properties {
		props[k] = v
	}
	return s.writeNode(s.dirFor(key.Tenant, p), nodeYAML{Collection: res.Collection, Properties: props})
}

func (s *Store) Delete(ctx context.Context, key repository.ResourceKey) error {
	if err := registry.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.nodeDir(key)); err != nil {
		return fmt.Errorf("fs: delete node: %w", err)
	}
	return nil
}
