package emailtemplate

import (
	"regexp"
	"strings"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
)

// TemplatePath es la raíz del registry donde viven los tipos de template.
const TemplatePath = "/identity/email"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize convierte un display name en el segmento de path canónico:
// sin espacios y en minúsculas. "Account Confirmation" -> "accountconfirmation".
func Normalize(displayName string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(displayName, ""))
}

// TypePath retorna el path del directorio de un tipo de template debajo de root.
func TypePath(root, displayName string) string {
	return repository.CleanPath(root) + repository.PathSeparator + Normalize(displayName)
}
