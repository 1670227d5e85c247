package admin

import (
	"net/http"

	"github.com/dropDatabas3/i18nmail/internal/emailtemplate"
	dto "github.com/dropDatabas3/i18nmail/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/i18nmail/internal/http/errors"
	"github.com/dropDatabas3/i18nmail/internal/http/helpers"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
)

// TemplateTypesController maneja /v1/tenants/{tenant}/email-template-types.
type TemplateTypesController struct {
	service TemplateService
}

// NewTemplateTypesController crea el controller.
func NewTemplateTypesController(service TemplateService) *TemplateTypesController {
	return &TemplateTypesController{service: service}
}

// List maneja GET /email-template-types.
func (c *TemplateTypesController) List(w http.ResponseWriter, r *http.Request) {
	tenant := helpers.Param(r, "tenant")

	names, err := c.service.ListTemplateTypes(r.Context(), tenant)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	resp := dto.TemplateTypesResponse{Types: make([]dto.TemplateTypeResponse, 0, len(names))}
	for _, n := range names {
		resp.Types = append(resp.Types, dto.TemplateTypeResponse{DisplayName: n, Type: emailtemplate.Normalize(n)})
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Create maneja POST /email-template-types.
func (c *TemplateTypesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TemplateTypesController.Create"))
	tenant := helpers.Param(r, "tenant")

	var req dto.CreateTemplateTypeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.service.AddTemplateType(ctx, req.DisplayName, tenant); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	log.Info("template type created", logger.TemplateType(req.DisplayName))
	helpers.WriteJSON(w, http.StatusCreated, dto.TemplateTypeResponse{
		DisplayName: req.DisplayName,
		Type:        emailtemplate.Normalize(req.DisplayName),
	})
}

// Get maneja GET /email-template-types/{type}.
func (c *TemplateTypesController) Get(w http.ResponseWriter, r *http.Request) {
	tenant := helpers.Param(r, "tenant")
	name := helpers.Param(r, "type")

	ok, err := c.service.TemplateTypeExists(r.Context(), name, tenant)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if !ok {
		notFound := httperrors.ErrNotFound.WithDetail("email template type " + name + " not found in " + tenant + " tenant")
		notFound.Code = emailtemplate.CodeTemplateTypeNotFound
		httperrors.WriteError(w, r, notFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.TemplateTypeResponse{DisplayName: name, Type: emailtemplate.Normalize(name)})
}

// Delete maneja DELETE /email-template-types/{type}. Borra también todas las traducciones.
func (c *TemplateTypesController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant := helpers.Param(r, "tenant")
	name := helpers.Param(r, "type")

	if err := c.service.DeleteTemplateType(ctx, name, tenant); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	logger.From(ctx).Info("template type deleted", logger.Layer("controller"), logger.TemplateType(name))
	helpers.NoContent(w)
}
