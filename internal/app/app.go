// Package app arma las dependencias del servicio a partir de la configuración:
// registry (adapter + cache + métricas), manager de templates, mailer y router HTTP.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/i18nmail/internal/config"
	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
	"github.com/dropDatabas3/i18nmail/internal/email"
	"github.com/dropDatabas3/i18nmail/internal/emailtemplate"
	httpapi "github.com/dropDatabas3/i18nmail/internal/http"
	"github.com/dropDatabas3/i18nmail/internal/http/controllers/admin"
	"github.com/dropDatabas3/i18nmail/internal/http/controllers/health"
	mw "github.com/dropDatabas3/i18nmail/internal/http/middlewares"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
	"github.com/dropDatabas3/i18nmail/internal/registry"

	_ "github.com/dropDatabas3/i18nmail/internal/registry/adapters/all"
)

// Version se setea con -ldflags en el build.
var Version = "dev"

// Container agrupa las dependencias ya conectadas.
type Container struct {
	Config  *config.Config
	Conn    registry.Connection
	Store   repository.ResourceStore
	Manager *emailtemplate.Manager
	Mailer  *email.Mailer
}

// AdapterConfig traduce la sección storage de la configuración.
func AdapterConfig(cfg *config.Config) registry.AdapterConfig {
	return registry.AdapterConfig{
		Name:          cfg.Storage.Driver,
		FSRoot:        cfg.Storage.FS.Root,
		DSN:           cfg.Storage.Postgres.DSN,
		MaxOpenConns:  cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:  cfg.Storage.Postgres.MaxIdleConns,
		Migrate:       cfg.Storage.Postgres.Migrate,
		RedisAddr:     cfg.Storage.Redis.Addr,
		RedisPassword: cfg.Storage.Redis.Password,
		RedisDB:       cfg.Storage.Redis.DB,
		Prefix:        cfg.Storage.Redis.Prefix,
	}
}

// Build conecta el registry y arma manager y mailer.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.L().With(logger.Layer("app"), logger.Component("bootstrap"))

	conn, err := registry.Open(ctx, AdapterConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	log.Info("registry connected", logger.Driver(conn.Name()))

	return NewContainer(cfg, conn)
}

// NewContainer arma el container sobre una conexión ya abierta.
func NewContainer(cfg *config.Config, conn registry.Connection) (*Container, error) {
	var store repository.ResourceStore = registry.Instrument(conn, conn.Name())
	if cfg.Cache.Enabled {
		store = registry.NewCachedStore(store, cfg.Cache.TTL)
	}

	validator, err := emailtemplate.NewValidator(emailtemplate.ValidationConfig{
		TemplateNamePattern: cfg.Templates.TemplateNamePattern,
		InvalidCharsPattern: cfg.Templates.InvalidCharsPattern,
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("template validation: %w", err)
	}

	opts := []emailtemplate.Option{
		emailtemplate.WithValidator(validator),
		emailtemplate.WithDefaultLocale(cfg.Templates.DefaultLocale),
		emailtemplate.WithRootPath(cfg.Templates.RootPath),
	}
	if cfg.Templates.DefaultsFile != "" {
		defaults, err := emailtemplate.LoadDefaults(cfg.Templates.DefaultsFile)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		opts = append(opts, emailtemplate.WithDefaults(defaults))
	}
	manager := emailtemplate.New(store, opts...)

	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			TLSMode:  cfg.SMTP.TLSMode,
		})
	}

	return &Container{
		Config:  cfg,
		Conn:    conn,
		Store:   store,
		Manager: manager,
		Mailer:  email.NewMailer(manager, sender),
	}, nil
}

// Handler arma el router HTTP con métricas registradas en reg.
func (c *Container) Handler(reg *prometheus.Registry) (http.Handler, error) {
	var (
		metrics http.Handler
		err     error
	)
	if reg != nil {
		metrics, err = httpapi.RegisterMetrics(reg, reg)
	} else {
		metrics, err = httpapi.RegisterMetrics(nil, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	var mail admin.MailService
	if c.Config.SMTP.Host != "" {
		mail = c.Mailer
	}

	return httpapi.NewRouter(httpapi.RouterDeps{
		Admin:  admin.NewControllers(c.Manager, mail),
		Health: health.NewHealthController(Version, map[string]health.Pinger{"registry": c.Conn}),
		AdminAuth: mw.AdminConfig{
			Secret: []byte(c.Config.Admin.JWTSecret),
			Issuer: c.Config.Admin.Issuer,
		},
		Metrics: metrics,
	}), nil
}

// Close libera la conexión al registry.
func (c *Container) Close() error {
	if c.Conn == nil {
		return nil
	}
	return c.Conn.Close()
}
