package email

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
)

// Sender entrega un mensaje ya renderizado.
type Sender interface {
	// Send envía el mensaje. Si Text no es vacío el destinatario recibe
	// multipart/alternative (text + html).
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig contiene la configuración para conectarse a un servidor SMTP.
type SMTPConfig struct {
	Host     string
	Port     int // default 587
	Username string
	Password string
	From     string
	TLSMode  string // "auto" | "starttls" | "ssl" | "none"
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string
	InsecureSkipVerify bool
}

// NewSMTPSender crea un SMTPSender desde la configuración.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	s := &SMTPSender{
		Host:    cfg.Host,
		Port:    cfg.Port,
		From:    cfg.From,
		User:    cfg.Username,
		Pass:    cfg.Password,
		TLSMode: cfg.TLSMode,
	}
	if s.Port == 0 {
		s.Port = 587
	}
	if s.TLSMode == "" {
		s.TLSMode = "auto"
	}
	return s
}

// buildMessage arma el mensaje MIME.
func (s *SMTPSender) buildMessage(msg Message) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	// Preferimos multipart/alternative (txt + html)
	contentType := msg.ContentType
	if contentType == "" {
		contentType = "text/html"
	}
	switch {
	case contentType != "text/html":
		m.SetBody(contentType, msg.Body)
	case msg.Text != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.Body)
	default:
		m.SetBody("text/html", msg.Body)
	}
	return m
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	log := logger.From(ctx).With(
		logger.Component("SMTPSender"),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
		logger.String("to", msg.To),
	)
	log.Debug("sending email",
		logger.String("from", s.From),
		logger.String("subject", msg.Subject),
		logger.String("tls_mode", s.TLSMode),
	)

	if err := ctx.Err(); err != nil {
		return err
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // solo dev
	}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// auto: STARTTLS si el servidor lo ofrece
	}

	if err := d.DialAndSend(s.buildMessage(msg)); err != nil {
		diag := DiagnoseSMTP(err)
		log.Error("smtp send failed", logger.Err(err), logger.String("diag", diag.Code))
		return &SendError{Diag: diag, Err: fmt.Errorf("smtp send: %w", err)}
	}

	log.Info("email sent successfully")
	return nil
}
