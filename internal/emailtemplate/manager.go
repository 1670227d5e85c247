// Package emailtemplate gestiona los templates de email por tenant y locale
// guardados en el registry jerárquico.
//
// Layout en el registry:
//
//	/identity/email/<tipo normalizado>           colección, propiedad "display"
//	/identity/email/<tipo normalizado>/<locale>  recurso: subject, body, footer
package emailtemplate

import (
	"context"
	"errors"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
)

// Manager implementa las operaciones sobre tipos y templates de email.
// No guarda estado mutable: todo lo configurable se fija en New.
type Manager struct {
	store         repository.ResourceStore
	validator     *Validator
	defaultLocale string
	root          string
	defaults      []EmailTemplate
	log           *zap.Logger
}

// Option configura un Manager.
type Option func(*Manager)

// WithValidator reemplaza los patrones de validación por defecto.
func WithValidator(v *Validator) Option {
	return func(m *Manager) {
		if v != nil {
			m.validator = v
		}
	}
}

// WithDefaultLocale cambia el locale de fallback (default en_US).
func WithDefaultLocale(locale string) Option {
	return func(m *Manager) {
		if s := strings.TrimSpace(locale); s != "" {
			m.defaultLocale = s
		}
	}
}

// WithRootPath cambia el path raíz del registry (default /identity/email).
func WithRootPath(root string) Option {
	return func(m *Manager) {
		if strings.TrimSpace(root) != "" {
			m.root = repository.CleanPath(root)
		}
	}
}

// WithDefaults reemplaza el set de templates que usa SeedDefaults.
func WithDefaults(templates []EmailTemplate) Option {
	return func(m *Manager) {
		if templates != nil {
			m.defaults = templates
		}
	}
}

// WithLogger fija un logger base. Si no se fija, se usa logger.From(ctx).
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// New crea un Manager sobre el store dado.
func New(store repository.ResourceStore, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		validator:     DefaultValidator(),
		defaultLocale: DefaultLocale,
		root:          TemplatePath,
		defaults:      DefaultTemplates(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultLocale retorna el locale de fallback configurado.
func (m *Manager) DefaultLocale() string { return m.defaultLocale }

func (m *Manager) logFor(ctx context.Context, op, tenant string) *zap.Logger {
	l := m.log
	if l == nil {
		l = logger.From(ctx)
	}
	return l.With(logger.Layer("service"), logger.Component("emailtemplate"), logger.Op(op), logger.TenantDomain(tenant))
}

func (m *Manager) typePath(displayName string) string {
	return TypePath(m.root, displayName)
}

// ─── Tipos de template ───

// AddTemplateType crea el directorio de un tipo de template.
// Falla con KindAlreadyExists si el tipo ya existe para el tenant.
func (m *Manager) AddTemplateType(ctx context.Context, displayName, tenant string) error {
	if err := m.validator.ValidateTemplateType(displayName); err != nil {
		return err
	}
	log := m.logFor(ctx, "AddTemplateType", tenant)

	normalized := Normalize(displayName)
	p := m.typePath(displayName)
	key := repository.Key(tenant, p)

	exists, err := m.store.Exists(ctx, key)
	if err != nil {
		log.Error("template type existence check failed", logger.ResourcePath(p), logger.Err(err))
		return serverError(err, "error adding template type %s to %s tenant", displayName, tenant)
	}
	if exists {
		return &Error{
			Kind:    KindAlreadyExists,
			Code:    CodeTemplateTypeAlreadyExists,
			Message: "email template type " + displayName + " already exists in " + tenant + " tenant",
		}
	}

	if err := m.store.Put(ctx, newTemplateType(normalized, displayName), key); err != nil {
		log.Error("template type put failed", logger.ResourcePath(p), logger.Err(err))
		return serverError(err, "error adding template type %s to %s tenant", displayName, tenant)
	}
	log.Debug("template type created", logger.TemplateType(normalized))
	return nil
}

// DeleteTemplateType elimina un tipo y todas sus traducciones.
// Borrar un tipo inexistente no es un error.
func (m *Manager) DeleteTemplateType(ctx context.Context, displayName, tenant string) error {
	if err := m.validator.ValidateTemplateType(displayName); err != nil {
		return err
	}
	p := m.typePath(displayName)
	if err := m.store.Delete(ctx, repository.Key(tenant, p)); err != nil {
		m.logFor(ctx, "DeleteTemplateType", tenant).Error("template type delete failed", logger.ResourcePath(p), logger.Err(err))
		return serverError(err, "error deleting email template type %s from %s tenant", displayName, tenant)
	}
	return nil
}

// ListTemplateTypes retorna los display names de los tipos del tenant,
// en el orden de hijos que devuelve el store. Sin raíz, la lista es vacía.
func (m *Manager) ListTemplateTypes(ctx context.Context, tenant string) ([]string, error) {
	rootRes, err := m.store.Get(ctx, repository.Key(tenant, m.root))
	if err != nil {
		if repository.IsNotFound(err) {
			return []string{}, nil
		}
		return nil, serverError(err, "error when retrieving email template types of %s tenant", tenant)
	}

	types := make([]string, 0, len(rootRes.Children))
	for _, child := range rootRes.Children {
		res, err := m.store.Get(ctx, repository.Key(tenant, child))
		if err != nil {
			if repository.IsNotFound(err) {
				continue
			}
			return nil, serverError(err, "error when retrieving email template types of %s tenant", tenant)
		}
		display := res.Property(PropDisplayName)
		if display == "" {
			display = path.Base(child)
		}
		types = append(types, display)
	}
	return types, nil
}

// ListAllTemplates recorre raíz -> tipos -> locales y retorna todos los templates.
// Los recursos que no se pueden decodificar se loguean y se omiten.
func (m *Manager) ListAllTemplates(ctx context.Context, tenant string) ([]EmailTemplate, error) {
	log := m.logFor(ctx, "ListAllTemplates", tenant)

	rootRes, err := m.store.Get(ctx, repository.Key(tenant, m.root))
	if err != nil {
		if repository.IsNotFound(err) {
			return []EmailTemplate{}, nil
		}
		return nil, serverError(err, "error when retrieving email templates of %s tenant", tenant)
	}

	templates := []EmailTemplate{}
	for _, typeDir := range rootRes.Children {
		typeRes, err := m.store.Get(ctx, repository.Key(tenant, typeDir))
		if err != nil {
			if repository.IsNotFound(err) {
				continue
			}
			return nil, serverError(err, "error when retrieving email templates of %s tenant", tenant)
		}
		if !typeRes.Collection {
			continue
		}
		for _, child := range typeRes.Children {
			res, err := m.store.Get(ctx, repository.Key(tenant, child))
			if err != nil {
				if repository.IsNotFound(err) {
					continue
				}
				return nil, serverError(err, "error when retrieving email templates of %s tenant", tenant)
			}
			t, err := fromResource(res)
			if err != nil {
				log.Error("skipping undecodable template resource", logger.ResourcePath(child), logger.Err(err))
				continue
			}
			templates = append(templates, *t)
		}
	}
	return templates, nil
}

// ─── Templates ───

// GetTemplate retorna la traducción pedida. Si no existe, reintenta una vez con el
// locale por defecto; si tampoco existe en el locale por defecto falla con KindNotFound.
func (m *Manager) GetTemplate(ctx context.Context, displayName, locale, tenant string) (*EmailTemplate, error) {
	if err := m.validator.ValidateTemplateType(displayName); err != nil {
		return nil, err
	}
	if err := m.validator.ValidateLocale(locale); err != nil {
		return nil, err
	}

	p := m.typePath(displayName)
	log := m.logFor(ctx, "GetTemplate", tenant)

	res, err := m.store.Get(ctx, repository.LocaleKey(tenant, p, locale))
	switch {
	case err == nil:
		t, err := fromResource(res)
		if err != nil {
			log.Error("template resource decode failed", logger.ResourcePath(p), logger.Locale(locale), logger.Err(err))
			return nil, serverError(err, "error when retrieving '%s:%s' template from %s tenant registry", displayName, locale, tenant)
		}
		return t, nil
	case !repository.IsNotFound(err):
		log.Error("template read failed", logger.ResourcePath(p), logger.Locale(locale), logger.Err(err))
		return nil, serverError(err, "error when retrieving '%s:%s' template from %s tenant registry", displayName, locale, tenant)
	}

	if strings.EqualFold(locale, m.defaultLocale) {
		return nil, &Error{
			Kind:    KindNotFound,
			Code:    CodeTemplateTypeNotFound,
			Message: "cannot find '" + displayName + "' template in the default '" + locale + "' locale for '" + tenant + "' tenant",
		}
	}

	log.Debug("template not found in requested locale, falling back to default locale",
		logger.TemplateType(displayName),
		logger.Locale(locale),
		zap.String("default_locale", m.defaultLocale),
	)
	return m.GetTemplate(ctx, displayName, m.defaultLocale, tenant)
}

// AddTemplate guarda (upsert) un template, creando el tipo si todavía no existe.
//
// Son dos escrituras independientes (EnsureTemplateType y PutTemplate) sin rollback:
// si la segunda falla, el directorio del tipo puede quedar creado y vacío.
func (m *Manager) AddTemplate(ctx context.Context, t *EmailTemplate, tenant string) error {
	if err := m.validator.ValidateTemplate(t); err != nil {
		return err
	}
	if _, err := m.EnsureTemplateType(ctx, t.TemplateDisplayName, tenant); err != nil {
		return err
	}
	return m.PutTemplate(ctx, t, tenant)
}

// EnsureTemplateType crea el tipo si no existe. Retorna true si lo creó.
// Perder una carrera contra otro creador no es un error.
func (m *Manager) EnsureTemplateType(ctx context.Context, displayName, tenant string) (bool, error) {
	if err := m.validator.ValidateTemplateType(displayName); err != nil {
		return false, err
	}
	p := m.typePath(displayName)
	exists, err := m.store.Exists(ctx, repository.Key(tenant, p))
	if err != nil {
		m.logFor(ctx, "EnsureTemplateType", tenant).Error("template type existence check failed", logger.ResourcePath(p), logger.Err(err))
		return false, serverError(err, "error when checking template type %s in %s tenant registry", displayName, tenant)
	}
	if exists {
		return false, nil
	}
	if err := m.AddTemplateType(ctx, displayName, tenant); err != nil {
		if IsAlreadyExists(err) {
			return false, nil
		}
		return false, err
	}
	m.logFor(ctx, "EnsureTemplateType", tenant).Debug("template type created implicitly", logger.TemplateType(displayName))
	return true, nil
}

// PutTemplate escribe la traducción en (tipo, locale). No crea el tipo.
func (m *Manager) PutTemplate(ctx context.Context, t *EmailTemplate, tenant string) error {
	if err := m.validator.ValidateTemplate(t); err != nil {
		return err
	}
	if t.EmailContentType == "" {
		t.EmailContentType = DefaultContentType
	}
	p := m.typePath(t.TemplateDisplayName)
	if err := m.store.Put(ctx, toResource(t), repository.LocaleKey(tenant, p, t.Locale)); err != nil {
		m.logFor(ctx, "PutTemplate", tenant).Error("template put failed", logger.ResourcePath(p), logger.Locale(t.Locale), logger.Err(err))
		if repository.IsConflict(err) {
			return &Error{
				Kind:    KindAlreadyExists,
				Message: "email template " + t.TemplateType + ":" + t.Locale + " already exists in " + tenant + " tenant",
				Err:     err,
			}
		}
		return serverError(err, "error when adding new email template of %s type, %s locale to %s tenant registry", t.TemplateType, t.Locale, tenant)
	}
	return nil
}

// DeleteTemplate borra una traducción. Solo valida que tipo y locale no estén vacíos.
func (m *Manager) DeleteTemplate(ctx context.Context, typeName, locale, tenant string) error {
	if strings.TrimSpace(typeName) == "" {
		return clientError("cannot delete template: email template type cannot be empty")
	}
	if strings.TrimSpace(locale) == "" {
		return clientError("cannot delete template: email locale cannot be empty")
	}
	p := m.typePath(typeName)
	if err := m.store.Delete(ctx, repository.LocaleKey(tenant, p, locale)); err != nil {
		m.logFor(ctx, "DeleteTemplate", tenant).Error("template delete failed", logger.ResourcePath(p), logger.Locale(locale), logger.Err(err))
		return serverError(err, "error deleting %s:%s template from %s tenant registry", typeName, locale, tenant)
	}
	return nil
}

// ─── Existencia ───

// TemplateExists indica si existe la traducción (tipo, locale). Las fallas del store se propagan.
func (m *Manager) TemplateExists(ctx context.Context, typeDisplayName, locale, tenant string) (bool, error) {
	if strings.TrimSpace(typeDisplayName) == "" {
		return false, clientError("email template type cannot be empty")
	}
	if strings.TrimSpace(locale) == "" {
		return false, clientError("locale code cannot be empty")
	}
	ok, err := m.store.Exists(ctx, repository.LocaleKey(tenant, m.typePath(typeDisplayName), locale))
	if err != nil {
		return false, serverError(err, "error when retrieving email templates of %s tenant", tenant)
	}
	return ok, nil
}

// TemplateTypeExists indica si existe el tipo. Las fallas del store se propagan.
func (m *Manager) TemplateTypeExists(ctx context.Context, typeDisplayName, tenant string) (bool, error) {
	if strings.TrimSpace(typeDisplayName) == "" {
		return false, clientError("email template type cannot be empty")
	}
	ok, err := m.store.Exists(ctx, repository.Key(tenant, m.typePath(typeDisplayName)))
	if err != nil {
		return false, serverError(err, "error when retrieving email templates of %s tenant", tenant)
	}
	return ok, nil
}

// ─── Seed ───

// SeedReport resume una pasada de SeedDefaults.
type SeedReport struct {
	Added   []string // display names agregados
	Skipped []string // display names que ya existían
	// Aborted indica que un chequeo de existencia falló y la pasada se cortó.
	Aborted bool
}

// SeedDefaults agrega al tenant los templates por defecto cuyo tipo todavía no existe.
// Nunca pisa tipos existentes, así que correrlo de nuevo no cambia nada.
//
// Es best-effort: si falla un chequeo de existencia, se loguea y se corta la pasada
// sin retornar error (a diferencia de TemplateExists/TemplateTypeExists, que propagan).
// Los errores de AddTemplate distintos de KindAlreadyExists sí se retornan.
func (m *Manager) SeedDefaults(ctx context.Context, tenant string) (SeedReport, error) {
	log := m.logFor(ctx, "SeedDefaults", tenant)
	var report SeedReport

	for _, def := range m.defaults {
		tpl := def
		p := m.typePath(tpl.TemplateDisplayName)

		exists, err := m.store.Exists(ctx, repository.Key(tenant, p))
		if err != nil {
			log.Error("error when checking for default email templates", logger.ResourcePath(p), logger.Err(err))
			report.Aborted = true
			return report, nil
		}
		if exists {
			report.Skipped = append(report.Skipped, tpl.TemplateDisplayName)
			continue
		}

		if err := m.AddTemplate(ctx, &tpl, tenant); err != nil {
			if IsAlreadyExists(err) {
				log.Warn("default template already exists, ignoring", logger.TemplateType(tpl.TemplateDisplayName))
				report.Skipped = append(report.Skipped, tpl.TemplateDisplayName)
				continue
			}
			var tErr *Error
			if !errors.As(err, &tErr) {
				err = serverError(err, "error adding default template %s", tpl.TemplateDisplayName)
			}
			return report, err
		}
		report.Added = append(report.Added, tpl.TemplateDisplayName)
		log.Debug("default template added", logger.TemplateType(tpl.TemplateType), logger.Locale(tpl.Locale))
	}

	log.Info("default email templates seeded",
		logger.Count(len(report.Added)),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}
