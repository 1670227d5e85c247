package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/i18nmail/internal/app"
	httpapi "github.com/dropDatabas3/i18nmail/internal/http"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	var seedTenants []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el admin API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), g, func(c *app.Container) error {
				log := logger.L().With(logger.Component("serve"))
				if addr != "" {
					c.Config.Server.Addr = addr
				}

				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				handler, err := c.Handler(reg)
				if err != nil {
					return err
				}
				srv := httpapi.NewServer(httpapi.ServerConfig{
					Addr:         c.Config.Server.Addr,
					ReadTimeout:  c.Config.Server.ReadTimeout,
					WriteTimeout: c.Config.Server.WriteTimeout,
				}, handler)

				grp, ctx := errgroup.WithContext(cmd.Context())
				grp.Go(func() error { return httpapi.Serve(ctx, srv) })

				// Seed inicial en paralelo con el server: un tenant que falla no frena al resto.
				for _, tenant := range seedTenants {
					tenant := tenant
					grp.Go(func() error {
						report, err := c.Manager.SeedDefaults(context.WithoutCancel(ctx), tenant)
						if err != nil {
							log.Error("startup seed failed", logger.TenantDomain(tenant), logger.Err(err))
							return nil
						}
						log.Info("startup seed done", logger.TenantDomain(tenant), logger.Count(len(report.Added)))
						return nil
					})
				}
				return grp.Wait()
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Dirección de escucha (pisa server.addr)")
	cmd.Flags().StringSliceVar(&seedTenants, "seed-tenant", nil, "Tenants a sembrar con los templates por defecto al arrancar")
	return cmd
}
