package middlewares

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/i18nmail/internal/http/errors"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
)

// AllTenants es el valor de "tenants" que habilita cualquier tenant.
const AllTenants = "*"

// AdminClaims son las claims esperadas en el bearer token del admin API.
type AdminClaims struct {
	// Tenants que el token puede administrar. "*" habilita todos.
	Tenants []string `json:"tenants"`
	jwtv5.RegisteredClaims
}

// CanAccess indica si las claims habilitan el tenant. La comparación es exacta:
// los stores distinguen mayúsculas en el tenant.
func (c *AdminClaims) CanAccess(tenant string) bool {
	for _, t := range c.Tenants {
		if t == AllTenants || t == tenant {
			return true
		}
	}
	return false
}

// AdminConfig configura la autenticación del admin API.
type AdminConfig struct {
	// Secret HMAC (HS256). Vacío deshabilita la autenticación (modo dev).
	Secret []byte
	// Issuer esperado. Vacío no valida iss.
	Issuer string
}

// RequireAdmin valida el bearer token (HS256) y deja las claims en el contexto.
// Sin Secret configurado deja pasar todo.
func RequireAdmin(cfg AdminConfig) Middleware {
	opts := []jwtv5.ParserOption{jwtv5.WithValidMethods([]string{"HS256"}), jwtv5.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(cfg.Issuer))
	}
	parser := jwtv5.NewParser(opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(cfg.Secret) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
				errors.WriteError(w, r, errors.ErrUnauthorized.WithDetail("missing bearer token"))
				return
			}

			cl := &AdminClaims{}
			_, err := parser.ParseWithClaims(strings.TrimSpace(raw[7:]), cl, func(t *jwtv5.Token) (any, error) {
				return cfg.Secret, nil
			})
			if err != nil {
				logger.From(r.Context()).Debug("admin token rejected", logger.Err(err))
				errors.WriteError(w, r, errors.ErrTokenInvalid.WithCause(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), cl)))
		})
	}
}

// RequireTenantAccess verifica que las claims habiliten el tenant de la URL ({tenant}).
// Sin claims en el contexto (auth deshabilitada) deja pasar.
func RequireTenantAccess(param string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant := chi.URLParam(r, param)
			if strings.TrimSpace(tenant) == "" {
				errors.WriteError(w, r, errors.ErrInvalidParameter.WithDetail("tenant is required"))
				return
			}
			if cl := GetClaims(r.Context()); cl != nil && !cl.CanAccess(tenant) {
				errors.WriteError(w, r, errors.ErrForbidden.WithDetail("token not valid for tenant "+tenant))
				return
			}
			ctx := logger.ToContext(r.Context(), logger.From(r.Context()).With(logger.TenantDomain(tenant)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantAdmin arma el stack del admin API por tenant: token válido y tenant habilitado.
func TenantAdmin(cfg AdminConfig, param string) Middleware {
	return Chain(RequireAdmin(cfg), RequireTenantAccess(param))
}
