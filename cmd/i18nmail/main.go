// Command i18nmail sirve el admin API de templates de email y expone las mismas
// operaciones por línea de comandos contra el registry configurado.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/i18nmail/internal/app"
	"github.com/dropDatabas3/i18nmail/internal/config"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
)

type globalFlags struct {
	configPath string
	envFiles   []string
	out        string // "json" | "text"
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "i18nmail",
		Short:         "Templates de email por tenant y locale",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "Archivo YAML de configuración (env I18NMAIL_CONFIG)")
	root.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env"}, "Archivos .env a cargar antes de leer el entorno")
	root.PersistentFlags().StringVar(&g.out, "out", "text", "Formato de salida: json|text")

	root.AddCommand(
		newServeCmd(g),
		newSeedCmd(g),
		newTypesCmd(g),
		newTemplatesCmd(g),
	)
	return root
}

// loadConfig carga .env + YAML e inicializa el logger.
func loadConfig(g *globalFlags) (*config.Config, error) {
	config.LoadEnvFiles(g.envFiles...)
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "i18nmail",
		Version:     app.Version,
	})
	return cfg, nil
}

// withContainer abre el registry, corre fn y cierra todo.
func withContainer(ctx context.Context, g *globalFlags, fn func(c *app.Container) error) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func printOut(g *globalFlags, v any, text func()) {
	if g.out == "json" {
		b, _ := json.MarshalIndent(v, "", "  ")
		fmt.Println(string(b))
		return
	}
	text()
}
