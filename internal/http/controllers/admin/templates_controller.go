package admin

import (
	"net/http"

	dto "github.com/dropDatabas3/i18nmail/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/i18nmail/internal/http/errors"
	"github.com/dropDatabas3/i18nmail/internal/http/helpers"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
)

// TemplatesController maneja /v1/tenants/{tenant}/email-templates.
type TemplatesController struct {
	service TemplateService
	mail    MailService
}

// NewTemplatesController crea el controller. mail puede ser nil.
func NewTemplatesController(service TemplateService, mail MailService) *TemplatesController {
	return &TemplatesController{service: service, mail: mail}
}

// List maneja GET /email-templates.
func (c *TemplatesController) List(w http.ResponseWriter, r *http.Request) {
	tenant := helpers.Param(r, "tenant")

	list, err := c.service.ListAllTemplates(r.Context(), tenant)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	resp := dto.TemplatesResponse{Templates: make([]dto.TemplateResponse, 0, len(list))}
	for i := range list {
		resp.Templates = append(resp.Templates, dto.FromTemplate(&list[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Get maneja GET /email-templates/{type}/{locale}.
// Si la traducción no existe responde la del locale por defecto; Content-Language
// indica el locale que realmente se devolvió.
func (c *TemplatesController) Get(w http.ResponseWriter, r *http.Request) {
	tenant := helpers.Param(r, "tenant")
	name := helpers.Param(r, "type")
	locale := helpers.Param(r, "locale")

	t, err := c.service.GetTemplate(r.Context(), name, locale, tenant)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Language", t.Locale)
	helpers.WriteJSON(w, http.StatusOK, dto.FromTemplate(t))
}

// Put maneja PUT /email-templates/{type}/{locale}. Crea el tipo si no existe.
func (c *TemplatesController) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TemplatesController.Put"))
	tenant := helpers.Param(r, "tenant")
	name := helpers.Param(r, "type")
	locale := helpers.Param(r, "locale")

	var req dto.PutTemplateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	t := req.ToTemplate(name, locale)
	if err := c.service.AddTemplate(ctx, t, tenant); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	log.Info("template saved", logger.TemplateType(t.TemplateType), logger.Locale(t.Locale))
	helpers.WriteJSON(w, http.StatusOK, dto.FromTemplate(t))
}

// Delete maneja DELETE /email-templates/{type}/{locale}.
func (c *TemplatesController) Delete(w http.ResponseWriter, r *http.Request) {
	tenant := helpers.Param(r, "tenant")
	name := helpers.Param(r, "type")
	locale := helpers.Param(r, "locale")

	if err := c.service.DeleteTemplate(r.Context(), name, locale, tenant); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.NoContent(w)
}

// Seed maneja POST /email-templates/seed.
func (c *TemplatesController) Seed(w http.ResponseWriter, r *http.Request) {
	tenant := helpers.Param(r, "tenant")

	report, err := c.service.SeedDefaults(r.Context(), tenant)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	resp := dto.SeedResponse{Added: report.Added, Skipped: report.Skipped, Aborted: report.Aborted}
	if resp.Added == nil {
		resp.Added = []string{}
	}
	if resp.Skipped == nil {
		resp.Skipped = []string{}
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Send maneja POST /email-templates/{type}/{locale}/send.
func (c *TemplatesController) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TemplatesController.Send"))

	if c.mail == nil {
		httperrors.WriteError(w, r, httperrors.ErrServiceUnavailable.WithDetail("smtp not configured"))
		return
	}

	tenant := helpers.Param(r, "tenant")
	name := helpers.Param(r, "type")
	locale := helpers.Param(r, "locale")

	var req dto.SendTemplateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.To == "" {
		httperrors.WriteError(w, r, httperrors.ErrBadRequest.WithDetail("field 'to' is required"))
		return
	}

	if err := c.mail.SendTemplate(ctx, tenant, name, locale, req.To, req.Vars); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	log.Debug("template sent", logger.TemplateType(name), logger.Locale(locale))
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, http.StatusOK, dto.SendTemplateResponse{Status: "sent", SentTo: req.To})
}
