// Package logger provee un logger Zap global con scoping por contexto.
//
//   - Global: una instancia inicializada con Init(); Replace() la cambia en tests.
//   - Context scoping: cada request lleva su logger con request_id y tenant_domain.
//   - Environments: "dev" consola con colores, "prod" JSON, "test" nop.
//
// Inicialización (una vez en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
// En services:
//
//	log := logger.From(ctx).With(logger.Component("emailtemplate"), logger.Op("GetTemplate"))
//	log.Debug("falling back to default locale", logger.Locale(locale))
package logger
