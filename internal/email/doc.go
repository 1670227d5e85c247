// Package email renderiza los templates guardados en el registry y los entrega por SMTP.
//
// Flujo:
//
//	Mailer.SendTemplate(ctx, tenant, tipo, locale, to, vars)
//	    │
//	    ├── emailtemplate.Manager.GetTemplate (con fallback al locale por defecto)
//	    ├── Render: subject (text/template), body + footer (html/template)
//	    ├── PlainText: alternativa en texto plano (bluemonday)
//	    └── Sender.Send (go-mail)
package email
