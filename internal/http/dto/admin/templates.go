// Package admin contiene los DTOs del admin API de templates de email.
package admin

import "github.com/dropDatabas3/i18nmail/internal/emailtemplate"

// CreateTemplateTypeRequest es el body de POST /email-template-types.
type CreateTemplateTypeRequest struct {
	DisplayName string `json:"display_name"`
}

// TemplateTypeResponse describe un tipo de template.
type TemplateTypeResponse struct {
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

// TemplateTypesResponse es la respuesta de GET /email-template-types.
type TemplateTypesResponse struct {
	Types []TemplateTypeResponse `json:"types"`
}

// PutTemplateRequest es el body de PUT /email-templates/{type}/{locale}.
// Tipo y locale salen de la URL.
type PutTemplateRequest struct {
	ContentType string `json:"email_content_type,omitempty"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Footer      string `json:"footer"`
}

// TemplateResponse es la representación JSON de un template.
type TemplateResponse struct {
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Locale      string `json:"locale"`
	ContentType string `json:"email_content_type"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Footer      string `json:"footer"`
}

// TemplatesResponse es la respuesta de GET /email-templates.
type TemplatesResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

// SeedResponse es la respuesta de POST /email-templates/seed.
type SeedResponse struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
	Aborted bool     `json:"aborted"`
}

// SendTemplateRequest es el body de POST /email-templates/{type}/{locale}/send.
type SendTemplateRequest struct {
	To   string         `json:"to"`
	Vars map[string]any `json:"vars,omitempty"`
}

// SendTemplateResponse confirma el envío.
type SendTemplateResponse struct {
	Status string `json:"status"`
	SentTo string `json:"sent_to"`
}

// FromTemplate convierte el modelo de dominio.
func FromTemplate(t *emailtemplate.EmailTemplate) TemplateResponse {
	return TemplateResponse{
		DisplayName: t.TemplateDisplayName,
		Type:        t.TemplateType,
		Locale:      t.Locale,
		ContentType: t.EmailContentType,
		Subject:     t.Subject,
		Body:        t.Body,
		Footer:      t.Footer,
	}
}

// ToTemplate arma el modelo de dominio con tipo y locale de la URL.
func (r PutTemplateRequest) ToTemplate(displayName, locale string) *emailtemplate.EmailTemplate {
	return &emailtemplate.EmailTemplate{
		TemplateDisplayName: displayName,
		TemplateType:        emailtemplate.Normalize(displayName),
		Locale:              locale,
		EmailContentType:    r.ContentType,
		Subject:             r.Subject,
		Body:                r.Body,
		Footer:              r.Footer,
	}
}
