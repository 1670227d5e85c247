package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/i18nmail/internal/emailtemplate"
)

func htmlTemplate() *emailtemplate.EmailTemplate {
	return &emailtemplate.EmailTemplate{
		TemplateDisplayName: "Account Lock",
		TemplateType:        "accountlock",
		Locale:              "en_US",
		EmailContentType:    "text/html",
		Subject:             "{{.TenantDomain}} -\n locked",
		Body:                "<html><body><p>Hello {{.UserName}}</p></body></html>",
		Footer:              "<p>&copy; {{.TenantDomain}}</p>",
	}
}

func TestRender_HTML(t *testing.T) {
	msg, err := Render(htmlTemplate(), map[string]any{
		"TenantDomain": "acme.com",
		"UserName":     "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	require.Equal(t, "acme.com - locked", msg.Subject)
	require.Equal(t, "text/html", msg.ContentType)
	require.NotContains(t, msg.Body, "<script>")
	require.Contains(t, msg.Body, "&lt;script&gt;")

	// El footer queda dentro del body del documento
	footerAt := strings.Index(msg.Body, "acme.com</p>")
	closeAt := strings.LastIndex(msg.Body, "</body>")
	require.Positive(t, footerAt)
	require.Less(t, footerAt, closeAt)

	require.Contains(t, msg.Text, "Hello <script>alert(1)</script>")
	require.Contains(t, msg.Text, "© acme.com")
	require.NotContains(t, msg.Text, "<p>")
}

func TestRender_PlainTextContent(t *testing.T) {
	tpl := htmlTemplate()
	tpl.EmailContentType = "text/plain"
	tpl.Body = "Hello {{.UserName}}, <b>{{.Missing}}</b>"
	tpl.Footer = "-- {{.TenantDomain}}"

	msg, err := Render(tpl, map[string]any{"UserName": "Ana", "TenantDomain": "acme.com"})
	require.NoError(t, err)
	require.Equal(t, "Hello Ana, <b></b>\n\n-- acme.com", msg.Body)
	require.Empty(t, msg.Text)
}

func TestRender_DefaultContentTypeIsHTML(t *testing.T) {
	tpl := htmlTemplate()
	tpl.EmailContentType = ""
	tpl.Body = "<p>{{.UserName}}</p>"

	msg, err := Render(tpl, map[string]any{"UserName": "a&b"})
	require.NoError(t, err)
	require.Equal(t, "text/html", msg.ContentType)
	require.True(t, strings.HasPrefix(msg.Body, "<p>a&amp;b</p>\n"))
}

func TestRender_HTMLWithParameters(t *testing.T) {
	for _, ct := range []string{"text/html; charset=utf-8", "Text/HTML", " text/html ;charset=\"UTF-8\"", "text/html;;"} {
		tpl := htmlTemplate()
		tpl.EmailContentType = ct

		msg, err := Render(tpl, map[string]any{"UserName": "<b>ana</b>"})
		require.NoError(t, err, ct)
		require.Equal(t, "text/html", msg.ContentType, ct)
		require.Contains(t, msg.Body, "&lt;b&gt;ana&lt;/b&gt;", ct)
		require.NotEmpty(t, msg.Text, ct)
		require.NotContains(t, msg.Text, "<p>", ct)
	}
}

func TestMediaType(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "text/html"},
		{"  ", "text/html"},
		{"text/plain", "text/plain"},
		{"TEXT/PLAIN; charset=iso-8859-1", "text/plain"},
		{"text/html; charset=utf-8", "text/html"},
		{"text/html;;", "text/html"},
	}
	for _, tt := range tests {
		if got := mediaType(tt.in); got != tt.want {
			t.Errorf("mediaType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(nil, nil)
	require.Error(t, err)

	tpl := htmlTemplate()
	tpl.Body = "{{.Broken"
	_, err = Render(tpl, nil)
	require.ErrorContains(t, err, "render body")

	tpl = htmlTemplate()
	tpl.Subject = "{{if}}"
	_, err = Render(tpl, nil)
	require.ErrorContains(t, err, "render subject")
}

func TestRender_DefaultTemplates(t *testing.T) {
	vars := map[string]any{"TenantDomain": "acme.com", "UserName": "ana", "Link": "https://acme.com/x"}
	for _, tpl := range emailtemplate.DefaultTemplates() {
		tpl := tpl
		msg, err := Render(&tpl, vars)
		require.NoError(t, err, tpl.TemplateDisplayName)
		require.Contains(t, msg.Subject, "acme.com")
		require.NotEmpty(t, msg.Text)
		require.NotContains(t, msg.Text, "{{")
	}
}

func TestPlainText(t *testing.T) {
	in := `<html><head><style>p { color: red; }</style></head><body>
<h2>Title</h2><p>First   line</p><p>Second<br>line</p>
<script>evil()</script></body></html>`

	got := PlainText(in)
	require.Equal(t, "Title\nFirst line\nSecond\nline", got)
}
