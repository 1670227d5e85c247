package email

import (
	"bytes"
	"fmt"
	"html"
	htemplate "html/template"
	"mime"
	"regexp"
	"strings"
	"sync"
	ttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dropDatabas3/i18nmail/internal/emailtemplate"
)

// Message es un email listo para entregar.
type Message struct {
	To          string
	Subject     string
	ContentType string
	Body        string // body + footer renderizados
	Text        string // alternativa en texto plano (solo para text/html)
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	blockEnd   = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|tr|table)>`)
	blankLines = regexp.MustCompile(`\n[ \t]*\n[\s]*`)
	spaces     = regexp.MustCompile(`[ \t]+`)
	bodyClose  = regexp.MustCompile(`(?i)</body>`)
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// PlainText deriva una versión en texto plano de un HTML: saca tags, estilos y scripts
// y conserva los saltos de línea de los elementos de bloque.
func PlainText(htmlBody string) string {
	s := blockEnd.ReplaceAllString(htmlBody, "$0\n")
	s = html.UnescapeString(textSanitizer().Sanitize(s))

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spaces.ReplaceAllString(l, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Render ejecuta subject, body y footer del template con vars.
// El subject siempre es texto; body y footer se escapan como HTML cuando el
// content type es text/html.
func Render(t *emailtemplate.EmailTemplate, vars map[string]any) (Message, error) {
	if t == nil {
		return Message{}, fmt.Errorf("render: nil template")
	}
	contentType := mediaType(t.EmailContentType)

	subject, err := execText("subject", t.Subject, vars)
	if err != nil {
		return Message{}, err
	}
	// Los headers no admiten saltos de línea.
	subject = strings.Join(strings.Fields(subject), " ")

	var body, footer string
	if contentType == "text/html" {
		if body, err = execHTML("body", t.Body, vars); err != nil {
			return Message{}, err
		}
		if footer, err = execHTML("footer", t.Footer, vars); err != nil {
			return Message{}, err
		}
	} else {
		if body, err = execText("body", t.Body, vars); err != nil {
			return Message{}, err
		}
		if footer, err = execText("footer", t.Footer, vars); err != nil {
			return Message{}, err
		}
	}

	msg := Message{Subject: subject, ContentType: contentType, Body: joinFooter(body, footer, contentType)}
	if contentType == "text/html" {
		msg.Text = PlainText(msg.Body)
	}
	return msg, nil
}

// mediaType reduce un content type a su media type en minúsculas, sin parámetros:
// "text/html; charset=utf-8" queda "text/html". El charset lo pone el sender.
func mediaType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return emailtemplate.DefaultContentType
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// joinFooter inserta el footer antes de </body> si el body es un documento completo.
func joinFooter(body, footer, contentType string) string {
	if footer == "" {
		return body
	}
	if contentType == "text/html" {
		if loc := bodyClose.FindAllStringIndex(body, -1); len(loc) > 0 {
			i := loc[len(loc)-1][0]
			return body[:i] + footer + "\n" + body[i:]
		}
		return body + "\n" + footer
	}
	return body + "\n\n" + footer
}

func execText(name, src string, vars map[string]any) (string, error) {
	t, err := ttemplate.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.ReplaceAll(buf.String(), "<no value>", ""), nil
}

func execHTML(name, src string, vars map[string]any) (string, error) {
	t, err := htemplate.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
