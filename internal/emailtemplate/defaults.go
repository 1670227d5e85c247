package emailtemplate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultLocale es el locale de fallback cuando falta una traducción.
const DefaultLocale = "en_US"

// ─── Estilos Base ───

const baseStyles = `
body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #f4f4f7; color: #333; margin: 0; padding: 0; }
.container { width: 100%; max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden; }
.content { padding: 40px; line-height: 1.6; }
.button { display: inline-block; background-color: #0070f3; color: #ffffff; text-decoration: none; padding: 12px 30px; border-radius: 5px; font-weight: 600; }
.info-box { background-color: #f0f7ff; border-left: 4px solid #0070f3; padding: 15px; margin: 20px 0; font-size: 14px; color: #0056b3; }
`

const defaultFooter = `<p style="font-size: 12px; color: #999;">&copy; {{.TenantDomain}}. All rights reserved.</p>`

func wrapHTML(content string) string {
	return `<!doctype html>
<html>
<head>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>` + baseStyles + `</style>
</head>
<body>
  <div class="container">
    <div class="content">
      ` + content + `
    </div>
  </div>
</body>
</html>`
}

func defaultTemplate(displayName, subject, content string) EmailTemplate {
	return EmailTemplate{
		TemplateDisplayName: displayName,
		TemplateType:        Normalize(displayName),
		Locale:              DefaultLocale,
		EmailContentType:    DefaultContentType,
		Subject:             subject,
		Body:                wrapHTML(content),
		Footer:              defaultFooter,
	}
}

// DefaultTemplates retorna el set de templates con el que se siembra un tenant nuevo.
// Cada llamada retorna una copia nueva.
func DefaultTemplates() []EmailTemplate {
	return []EmailTemplate{
		defaultTemplate("Account Confirmation", "{{.TenantDomain}} - Confirm your account", `
      <h2>Welcome to {{.TenantDomain}}</h2>
      <p>Hello <strong>{{.UserName}}</strong>,</p>
      <p>Please confirm your account by clicking the button below.</p>
      <p style="text-align: center;"><a href="{{.Link}}" class="button">Confirm account</a></p>
      <div class="info-box">If you did not create this account, you can ignore this message.</div>`),
		defaultTemplate("Password Reset", "{{.TenantDomain}} - Password reset", `
      <h2>Password recovery</h2>
      <p>Hello <strong>{{.UserName}}</strong>,</p>
      <p>We received a request to reset the password of your account.</p>
      <p style="text-align: center;"><a href="{{.Link}}" class="button">Reset password</a></p>
      <div class="info-box">If you did not request this change, your current password keeps working.</div>`),
		defaultTemplate("Ask Password", "{{.TenantDomain}} - Set your password", `
      <h2>Set your password</h2>
      <p>Hello <strong>{{.UserName}}</strong>,</p>
      <p>An account was created for you. Choose a password to start using it.</p>
      <p style="text-align: center;"><a href="{{.Link}}" class="button">Set password</a></p>`),
		defaultTemplate("Account Lock", "{{.TenantDomain}} - Your account has been locked", `
      <h2>Account locked</h2>
      <p>Hello <strong>{{.UserName}}</strong>,</p>
      <p>Your account has been locked. Please contact your administrator.</p>`),
		defaultTemplate("Account Unlock", "{{.TenantDomain}} - Your account has been unlocked", `
      <h2>Account unlocked</h2>
      <p>Hello <strong>{{.UserName}}</strong>,</p>
      <p>Your account has been unlocked. You can sign in again.</p>`),
		defaultTemplate("Account Disable", "{{.TenantDomain}} - Your account has been disabled", `
      <h2>Account disabled</h2>
      <p>Hello <strong>{{.UserName}}</strong>,</p>
      <p>Your account has been disabled by an administrator.</p>`),
		defaultTemplate("Account Enable", "{{.TenantDomain}} - Your account has been enabled", `
      <h2>Account enabled</h2>
      <p>Hello <strong>{{.UserName}}</strong>,</p>
      <p>Your account is active again.</p>`),
		defaultTemplate("Account Id Recovery", "{{.TenantDomain}} - Your username", `
      <h2>Username recovery</h2>
      <p>Hello,</p>
      <p>Your username is <strong>{{.UserName}}</strong>.</p>`),
	}
}

// LoadDefaults lee un set de templates por defecto desde un archivo YAML:
//
//	templates:
//	  - display_name: Account Confirmation
//	    locale: en_US
//	    subject: ...
//	    body: ...
//	    footer: ...
func LoadDefaults(path string) ([]EmailTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read default templates: %w", err)
	}
	var doc struct {
		Templates []EmailTemplate `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse default templates: %w", err)
	}
	for i := range doc.Templates {
		if err := DefaultValidator().ValidateTemplate(&doc.Templates[i]); err != nil {
			return nil, fmt.Errorf("default template #%d: %w", i, err)
		}
	}
	return doc.Templates, nil
}
