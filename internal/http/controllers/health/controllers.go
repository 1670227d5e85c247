// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/i18nmail/internal/http/dto/health"
	"github.com/dropDatabas3/i18nmail/internal/http/helpers"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
)

// Pinger verifica un componente. Implementada por registry.Connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController maneja /healthz y /readyz.
type HealthController struct {
	version    string
	components map[string]Pinger
}

// NewHealthController crea el controller.
func NewHealthController(version string, components map[string]Pinger) *HealthController {
	return &HealthController{version: version, components: components}
}

// Healthz maneja GET /healthz (liveness, no toca dependencias).
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz maneja GET /readyz.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	resp := dto.HealthResponse{Status: "ready", Version: c.version, Components: map[string]string{}}
	for name, p := range c.components {
		if err := p.Ping(ctx); err != nil {
			log.Warn("component not ready", logger.Component(name), logger.Err(err))
			resp.Components[name] = "error"
			resp.Status = "unavailable"
			continue
		}
		resp.Components[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, resp)
}
