package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dropDatabas3/i18nmail/internal/emailtemplate"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
)

var (
	// ErrSenderNotConfigured indica que no hay SMTP configurado.
	ErrSenderNotConfigured = errors.New("email: sender not configured")

	// ErrInvalidRecipient indica que la dirección destino no es válida.
	ErrInvalidRecipient = errors.New("email: invalid recipient")
)

// TemplateSource resuelve un template con fallback al locale por defecto.
// Implementada por emailtemplate.Manager.
type TemplateSource interface {
	GetTemplate(ctx context.Context, displayName, locale, tenant string) (*emailtemplate.EmailTemplate, error)
}

// Mailer renderiza templates del registry y los entrega por un Sender.
type Mailer struct {
	templates TemplateSource
	sender    Sender
}

// NewMailer crea un Mailer. sender puede ser nil: SendTemplate falla con ErrSenderNotConfigured.
func NewMailer(templates TemplateSource, sender Sender) *Mailer {
	return &Mailer{templates: templates, sender: sender}
}

// Preview resuelve y renderiza el template sin enviarlo.
// Si vars no trae TenantDomain, se completa con el tenant.
func (m *Mailer) Preview(ctx context.Context, tenant, templateType, locale string, vars map[string]any) (Message, error) {
	t, err := m.templates.GetTemplate(ctx, templateType, locale, tenant)
	if err != nil {
		return Message{}, err
	}
	data := make(map[string]any, len(vars)+1)
	for k, v := range vars {
		data[k] = v
	}
	if _, ok := data["TenantDomain"]; !ok {
		data["TenantDomain"] = tenant
	}
	return Render(t, data)
}

// SendTemplate resuelve (tipo, locale) con fallback, lo renderiza y lo envía a to.
func (m *Mailer) SendTemplate(ctx context.Context, tenant, templateType, locale, to string, vars map[string]any) error {
	if m.sender == nil {
		return ErrSenderNotConfigured
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(to))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}

	msg, err := m.Preview(ctx, tenant, templateType, locale, vars)
	if err != nil {
		return err
	}
	msg.To = addr.Address

	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("mailer"),
		logger.TenantDomain(tenant),
		logger.TemplateType(templateType),
		logger.Locale(locale),
	)
	if err := m.sender.Send(ctx, msg); err != nil {
		log.Warn("template delivery failed", logger.Err(err))
		return err
	}
	log.Debug("template delivered")
	return nil
}
