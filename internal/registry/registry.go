// Package registry provee el registry de adapters del ResourceStore y los
// decoradores comunes (cache, métricas).
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
)

// Adapter crea conexiones a un backend de registry.
type Adapter interface {
	// Name retorna el nombre del adapter (ej: "fs", "postgres", "redis", "memory").
	Name() string

	// Connect establece conexión con el almacenamiento.
	Connect(ctx context.Context, cfg AdapterConfig) (Connection, error)
}

// Connection es un ResourceStore con ciclo de vida.
type Connection interface {
	repository.ResourceStore

	// Name retorna el nombre del adapter.
	Name() string

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close libera los recursos de la conexión.
	Close() error
}

// AdapterConfig configuración para conectar a un backend.
type AdapterConfig struct {
	// Name del adapter: "fs", "postgres", "redis", "memory"
	Name string

	// FSRoot directorio raíz (adapter fs)
	FSRoot string

	// DSN connection string (adapter postgres)
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	// Migrate aplica las migraciones embebidas al conectar (adapter postgres)
	Migrate bool

	// Redis (adapter redis)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Prefix para todas las keys (adapter redis)
	Prefix string
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter en el registry global.
// Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("registry: adapter %q already registered", name))
	}
	adapters[name] = a
}

// GetAdapter obtiene un adapter por nombre.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres de los adapters registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open abre una conexión usando el adapter indicado en cfg.Name.
func Open(ctx context.Context, cfg AdapterConfig) (Connection, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("registry: adapter %q not registered (available: %s)", cfg.Name, strings.Join(ListAdapters(), ", "))
	}
	return a.Connect(ctx, cfg)
}

// ─── Helpers para adapters ───

// Ancestors retorna los paths de todos los ancestros de p (sin incluir "/"),
// del más cercano a la raíz al más profundo.
// Ancestors("/identity/email/x") = ["/identity", "/identity/email"].
func Ancestors(p string) []string {
	p = repository.CleanPath(p)
	var out []string
	for parent := repository.ParentPath(p); parent != repository.PathSeparator; parent = repository.ParentPath(parent) {
		out = append(out, parent)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// IsDescendant indica si p está dentro del subárbol de root (p == root incluido).
func IsDescendant(p, root string) bool {
	p, root = repository.CleanPath(p), repository.CleanPath(root)
	if root == repository.PathSeparator {
		return true
	}
	return p == root || strings.HasPrefix(p, root+repository.PathSeparator)
}

// ValidateTenant rechaza tenants vacíos o que no se puedan usar como segmento de path.
func ValidateTenant(tenant string) error {
	t := strings.TrimSpace(tenant)
	if t == "" || t == "." || t == ".." || strings.ContainsAny(t, `/\`) {
		return fmt.Errorf("%w: tenant %q", repository.ErrInvalidInput, tenant)
	}
	return nil
}

// ValidateKey valida tenant, path y locale de una key antes de tocar el backend.
// Rechaza segmentos "." y ".." en el path y locales que no sean un único segmento,
// para que ninguna key resuelva fuera del nodo pedido.
func ValidateKey(key repository.ResourceKey) error {
	if err := ValidateTenant(key.Tenant); err != nil {
		return err
	}
	for _, seg := range strings.Split(strings.ReplaceAll(key.Path, `\`, "/"), "/") {
		if seg == "." || seg == ".." {
			return fmt.Errorf("%w: path %q", repository.ErrInvalidInput, key.Path)
		}
	}
	if loc := strings.TrimSpace(key.Locale); loc != "" {
		if loc == "." || loc == ".." || strings.ContainsAny(loc, `/\`) {
			return fmt.Errorf("%w: locale %q", repository.ErrInvalidInput, key.Locale)
		}
	}
	return nil
}

// CloneResource copia profunda de un recurso.
func CloneResource(r *repository.Resource) *repository.Resource {
	if r == nil {
		return nil
	}
	out := &repository.Resource{Collection: r.Collection, Properties: make(map[string]string, len(r.Properties))}
	for k, v := range r.Properties {
		out.Properties[k] = v
	}
	if r.Children != nil {
		out.Children = append([]string(nil), r.Children...)
	}
	return out
}
