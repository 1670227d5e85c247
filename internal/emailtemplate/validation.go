package emailtemplate

import (
	"fmt"
	"regexp"
	"strings"
)

// Patrones por defecto.
//   - DefaultTemplateNamePattern: alfanuméricos y espacios.
//   - DefaultInvalidCharsPattern: caracteres que el registry no acepta en paths.
const (
	DefaultTemplateNamePattern = `^[a-zA-Z0-9\s]+$`
	DefaultInvalidCharsPattern = `[~!@#;%^*()+={}|\\<>"',]`
)

// ValidationConfig contiene los patrones de whitelist/blacklist.
type ValidationConfig struct {
	TemplateNamePattern string `yaml:"template_name_pattern"`
	InvalidCharsPattern string `yaml:"invalid_chars_pattern"`
}

// DefaultValidationConfig retorna los patrones por defecto.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		TemplateNamePattern: DefaultTemplateNamePattern,
		InvalidCharsPattern: DefaultInvalidCharsPattern,
	}
}

// Validator valida display names, locales y templates completos.
// Se construye una vez y no se modifica; es seguro para uso concurrente.
type Validator struct {
	allowed *regexp.Regexp
	invalid *regexp.Regexp
}

// NewValidator compila los patrones. Patrones vacíos toman el valor por defecto.
func NewValidator(cfg ValidationConfig) (*Validator, error) {
	if cfg.TemplateNamePattern == "" {
		cfg.TemplateNamePattern = DefaultTemplateNamePattern
	}
	if cfg.InvalidCharsPattern == "" {
		cfg.InvalidCharsPattern = DefaultInvalidCharsPattern
	}
	allowed, err := regexp.Compile(cfg.TemplateNamePattern)
	if err != nil {
		return nil, fmt.Errorf("template name pattern: %w", err)
	}
	invalid, err := regexp.Compile(cfg.InvalidCharsPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid chars pattern: %w", err)
	}
	return &Validator{allowed: allowed, invalid: invalid}, nil
}

var defaultValidator = func() *Validator {
	v, err := NewValidator(DefaultValidationConfig())
	if err != nil {
		panic(err)
	}
	return v
}()

// DefaultValidator retorna el validator con los patrones por defecto.
func DefaultValidator() *Validator { return defaultValidator }

// ValidateTemplateType valida el display name de un tipo de template.
func (v *Validator) ValidateTemplateType(displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return clientError("email template type display name cannot be empty")
	}
	if !v.allowed.MatchString(displayName) || v.invalid.MatchString(displayName) {
		return clientError("invalid characters exist in the email template display name: %s", displayName)
	}
	return nil
}

// ValidateLocale valida un código de locale (solo blacklist).
func (v *Validator) ValidateLocale(locale string) error {
	if strings.TrimSpace(locale) == "" {
		return clientError("locale code cannot be empty")
	}
	if v.invalid.MatchString(locale) {
		return clientError("locale contains invalid characters: %s", locale)
	}
	return nil
}

// ValidateTemplate valida un template antes de persistirlo.
// Corrige TemplateType si no coincide con el nombre normalizado del display name.
func (v *Validator) ValidateTemplate(t *EmailTemplate) error {
	if t == nil {
		return clientError("email template cannot be nil")
	}
	if err := v.ValidateTemplateType(t.TemplateDisplayName); err != nil {
		return err
	}
	if normalized := Normalize(t.TemplateDisplayName); !strings.EqualFold(normalized, t.TemplateType) {
		t.TemplateType = normalized
	}
	if err := v.ValidateLocale(t.Locale); err != nil {
		return err
	}
	if strings.TrimSpace(t.Subject) == "" || strings.TrimSpace(t.Body) == "" || strings.TrimSpace(t.Footer) == "" {
		return clientError("subject/body/footer sections of email template cannot be empty")
	}
	return nil
}
