// Package repository define el contrato del registry jerárquico de recursos.
//
// El registry es un árbol de nodos por tenant: colecciones (directorios con
// propiedades) y recursos hoja (bolsas de propiedades). Los templates de email
// viven debajo de un path raíz fijo.
//
// Las implementaciones concretas viven en internal/registry/adapters/.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────┐
//	│       emailtemplate.Manager / controllers           │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository.ResourceStore              │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	      ┌──────────────┬──┴───────────┬──────────────┐
//	      ▼              ▼              ▼              ▼
//	┌───────────┐  ┌───────────┐  ┌───────────┐  ┌───────────┐
//	│    fs     │  │    pg     │  │   redis   │  │  memory   │
//	└───────────┘  └───────────┘  └───────────┘  └───────────┘
//
// Convenciones:
//   - El tenant viaja siempre dentro de ResourceKey
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
package repository
