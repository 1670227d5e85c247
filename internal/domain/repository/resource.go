package repository

import (
	"context"
	"path"
	"strings"
)

// PathSeparator separa los segmentos de un path del registry.
const PathSeparator = "/"

// ResourceKey identifica un nodo del registry de un tenant.
// Locale es una sub-key opcional debajo de Path (se guarda en minúsculas).
type ResourceKey struct {
	Tenant string
	Path   string
	Locale string
}

// Key construye una ResourceKey sin locale.
func Key(tenant, p string) ResourceKey {
	return ResourceKey{Tenant: tenant, Path: p}
}

// LocaleKey construye una ResourceKey con sub-key de locale.
func LocaleKey(tenant, p, locale string) ResourceKey {
	return ResourceKey{Tenant: tenant, Path: p, Locale: locale}
}

// FullPath retorna el path efectivo del nodo, incluyendo el locale si existe.
func (k ResourceKey) FullPath() string {
	if loc := strings.ToLower(strings.TrimSpace(k.Locale)); loc != "" {
		return CleanPath(k.Path + PathSeparator + loc)
	}
	return CleanPath(k.Path)
}

// CleanPath normaliza un path del registry: absoluto, sin separadores duplicados ni finales.
func CleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return PathSeparator
	}
	return path.Clean(PathSeparator + p)
}

// ParentPath retorna el path del padre ("/" para nodos de primer nivel y para la raíz).
func ParentPath(p string) string {
	return path.Dir(CleanPath(p))
}

// Resource es una bolsa de propiedades clave/valor.
// Una colección además expone sus hijos inmediatos (paths completos).
type Resource struct {
	Collection bool
	Properties map[string]string
	Children   []string
}

// NewCollection crea una colección vacía.
func NewCollection() *Resource {
	return &Resource{Collection: true, Properties: map[string]string{}}
}

// NewResource crea un recurso hoja vacío.
func NewResource() *Resource {
	return &Resource{Properties: map[string]string{}}
}

// Property retorna el valor de una propiedad ("" si no existe).
func (r *Resource) Property(name string) string {
	if r == nil || r.Properties == nil {
		return ""
	}
	return r.Properties[name]
}

// SetProperty asigna una propiedad, inicializando el mapa si hace falta.
func (r *Resource) SetProperty(name, value string) {
	if r.Properties == nil {
		r.Properties = map[string]string{}
	}
	r.Properties[name] = value
}

// ResourceStore es el registry jerárquico por tenant sobre el que se guardan los templates.
// Todas las operaciones están aisladas por tenant.
type ResourceStore interface {
	// Exists indica si hay un nodo en la key.
	Exists(ctx context.Context, key ResourceKey) (bool, error)

	// Get retorna el nodo en la key. Retorna ErrNotFound si no existe.
	// Para colecciones, Children contiene los paths de los hijos inmediatos.
	Get(ctx context.Context, key ResourceKey) (*Resource, error)

	// Put crea o reemplaza el nodo en la key.
	// Los ancestros que falten se crean como colecciones vacías.
	Put(ctx context.Context, res *Resource, key ResourceKey) error

	// Delete elimina el nodo y todo su subárbol. Si no existe, no hace nada.
	Delete(ctx context.Context, key ResourceKey) error
}
