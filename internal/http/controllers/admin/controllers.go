// Package admin contiene los controllers del admin API de templates de email.
package admin

import (
	"context"

	"github.com/dropDatabas3/i18nmail/internal/emailtemplate"
)

// TemplateService son las operaciones del manager que expone el API.
// Implementada por *emailtemplate.Manager.
type TemplateService interface {
	AddTemplateType(ctx context.Context, displayName, tenant string) error
	DeleteTemplateType(ctx context.Context, displayName, tenant string) error
	ListTemplateTypes(ctx context.Context, tenant string) ([]string, error)
	TemplateTypeExists(ctx context.Context, displayName, tenant string) (bool, error)
	ListAllTemplates(ctx context.Context, tenant string) ([]emailtemplate.EmailTemplate, error)
	GetTemplate(ctx context.Context, displayName, locale, tenant string) (*emailtemplate.EmailTemplate, error)
	AddTemplate(ctx context.Context, t *emailtemplate.EmailTemplate, tenant string) error
	DeleteTemplate(ctx context.Context, typeName, locale, tenant string) error
	SeedDefaults(ctx context.Context, tenant string) (emailtemplate.SeedReport, error)
}

// MailService entrega un template renderizado. Implementada por *email.Mailer.
type MailService interface {
	SendTemplate(ctx context.Context, tenant, templateType, locale, to string, vars map[string]any) error
}

// Controllers agrupa los controllers del admin API.
type Controllers struct {
	Types     *TemplateTypesController
	Templates *TemplatesController
}

// NewControllers crea el agregador. mail puede ser nil (envío deshabilitado).
func NewControllers(templates TemplateService, mail MailService) *Controllers {
	return &Controllers{
		Types:     NewTemplateTypesController(templates),
		Templates: NewTemplatesController(templates, mail),
	}
}
