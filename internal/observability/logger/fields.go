package logger

import (
	"time"

	"go.uber.org/zap"
)

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v time.Duration) zap.Field {
	return zap.Int64("duration_ms", v.Milliseconds())
}

// ─── Templates ───

// TenantDomain crea un campo para el dominio del tenant.
func TenantDomain(v string) zap.Field {
	return zap.String("tenant_domain", v)
}

// TemplateType crea un campo para el tipo de template (display name o normalizado).
func TemplateType(v string) zap.Field {
	return zap.String("template_type", v)
}

// Locale crea un campo para el código de locale.
func Locale(v string) zap.Field {
	return zap.String("locale", v)
}

// ResourcePath crea un campo para un path del registry.
func ResourcePath(v string) zap.Field {
	return zap.String("resource_path", v)
}

// Driver crea un campo para el driver de storage.
func Driver(v string) zap.Field {
	return zap.String("driver", v)
}

// ─── Sistema ───

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (controller, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

// Count crea un campo para un conteo.
func Count(v int) zap.Field { return zap.Int("count", v) }

// Any crea un campo genérico.
func Any(key string, v any) zap.Field { return zap.Any(key, v) }

// String crea un campo string genérico.
func String(key, v string) zap.Field { return zap.String(key, v) }

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
