package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/i18nmail/internal/http/controllers/admin"
	"github.com/dropDatabas3/i18nmail/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/i18nmail/internal/http/errors"
	mw "github.com/dropDatabas3/i18nmail/internal/http/middlewares"
)

// RouterDeps contiene las dependencias del router.
type RouterDeps struct {
	Admin  *admin.Controllers
	Health *health.HealthController

	// AdminAuth configura la autenticación del admin API.
	AdminAuth mw.AdminConfig

	// Metrics es el handler de /metrics (opcional).
	Metrics http.Handler
}

// NewRouter arma el router chi con todas las rutas.
//
//	GET    /healthz
//	GET    /readyz
//	GET    /metrics
//	/v1/tenants/{tenant}
//	  GET    /email-template-types
//	  POST   /email-template-types
//	  GET    /email-template-types/{type}
//	  DELETE /email-template-types/{type}
//	  GET    /email-templates
//	  POST   /email-templates/seed
//	  GET    /email-templates/{type}/{locale}
//	  PUT    /email-templates/{type}/{locale}
//	  DELETE /email-templates/{type}/{locale}
//	  POST   /email-templates/{type}/{locale}/send
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		WithMetrics,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrMethodNotAllowed)
	})

	if deps.Health != nil {
		r.Get("/healthz", deps.Health.Healthz)
		r.Get("/readyz", deps.Health.Readyz)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	if deps.Admin != nil {
		r.Route("/v1/tenants/{tenant}", func(r chi.Router) {
			r.Use(mw.TenantAdmin(deps.AdminAuth, "tenant"))
			registerTemplateRoutes(r, deps.Admin)
		})
	}
	return r
}

func registerTemplateRoutes(r chi.Router, c *admin.Controllers) {
	r.Route("/email-template-types", func(r chi.Router) {
		r.Get("/", c.Types.List)
		r.Post("/", c.Types.Create)
		r.Get("/{type}", c.Types.Get)
		r.Delete("/{type}", c.Types.Delete)
	})

	r.Route("/email-templates", func(r chi.Router) {
		r.Get("/", c.Templates.List)
		r.Post("/seed", c.Templates.Seed)
		r.Get("/{type}/{locale}", c.Templates.Get)
		r.Put("/{type}/{locale}", c.Templates.Put)
		r.Delete("/{type}/{locale}", c.Templates.Delete)
		r.Post("/{type}/{locale}/send", c.Templates.Send)
	})
}
