package emailtemplate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
)

// DefaultContentType es el content type de un template cuando no se especifica.
const DefaultContentType = "text/html"

// Propiedades de los recursos en el registry.
const (
	PropDisplayName  = "display"
	PropTemplateType = "type"
	PropLocale       = "locale"
	PropContentType  = "emailContentType"
	PropSubject      = "subject"
	PropBody         = "body"
	PropFooter       = "footer"
)

// EmailTemplate es una traducción de un tipo de template.
type EmailTemplate struct {
	TemplateDisplayName string `json:"displayName" yaml:"display_name"`
	TemplateType        string `json:"type" yaml:"type"`
	Locale              string `json:"locale" yaml:"locale"`
	EmailContentType    string `json:"contentType,omitempty" yaml:"content_type"`
	Subject             string `json:"subject" yaml:"subject"`
	Body                string `json:"body" yaml:"body"`
	Footer              string `json:"footer" yaml:"footer"`
}

func (t EmailTemplate) String() string {
	return fmt.Sprintf("EmailTemplate{type=%s, locale=%s, contentType=%s}", t.TemplateType, t.Locale, t.EmailContentType)
}

// newTemplateType crea la colección que representa un tipo de template.
func newTemplateType(normalizedName, displayName string) *repository.Resource {
	c := repository.NewCollection()
	c.SetProperty(PropDisplayName, displayName)
	c.SetProperty(PropTemplateType, normalizedName)
	return c
}

// toResource serializa un template a un recurso del registry.
func toResource(t *EmailTemplate) *repository.Resource {
	contentType := t.EmailContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	r := repository.NewResource()
	r.SetProperty(PropDisplayName, t.TemplateDisplayName)
	r.SetProperty(PropTemplateType, t.TemplateType)
	r.SetProperty(PropLocale, t.Locale)
	r.SetProperty(PropContentType, contentType)
	r.SetProperty(PropSubject, t.Subject)
	r.SetProperty(PropBody, t.Body)
	r.SetProperty(PropFooter, t.Footer)
	return r
}

// fromResource deserializa un recurso del registry.
// Falla si el recurso es una colección o le falta contenido.
func fromResource(r *repository.Resource) (*EmailTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil resource", repository.ErrInvalidInput)
	}
	if r.Collection {
		return nil, fmt.Errorf("%w: resource is a collection", repository.ErrInvalidInput)
	}
	t := &EmailTemplate{
		TemplateDisplayName: r.Property(PropDisplayName),
		TemplateType:        r.Property(PropTemplateType),
		Locale:              r.Property(PropLocale),
		EmailContentType:    r.Property(PropContentType),
		Subject:             r.Property(PropSubject),
		Body:                r.Property(PropBody),
		Footer:              r.Property(PropFooter),
	}
	var missing []string
	for name, v := range map[string]string{
		PropDisplayName: t.TemplateDisplayName,
		PropLocale:      t.Locale,
		PropSubject:     t.Subject,
		PropBody:        t.Body,
		PropFooter:      t.Footer,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: template resource missing %s", repository.ErrInvalidInput, strings.Join(missing, ","))
	}
	if t.TemplateType == "" {
		t.TemplateType = Normalize(t.TemplateDisplayName)
	}
	if t.EmailContentType == "" {
		t.EmailContentType = DefaultContentType
	}
	return t, nil
}
