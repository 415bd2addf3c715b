package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/scribe/api"
	"github.com/kbukum/scribe/auth"
	"github.com/kbukum/scribe/bootstrap"
	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/server"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *Config) error {
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	in, err := registerInfra(app)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, app.Logger)
	httpComp := server.NewComponent(srv)

	app.OnConfigure(func(_ context.Context, a *bootstrap.App[*Config]) error {
		svc, err := buildServices(a.Cfg, in, a.Logger)
		if err != nil {
			return err
		}

		srv.ApplyMiddleware()
		srv.RegisterHealthEndpoints(a.Name, func(ctx context.Context) []component.Health {
			return append(a.Components.HealthAll(ctx), httpComp.Health(ctx))
		})

		routes := srv.GinEngine().Group("/api")
		if a.Cfg.Auth.Enabled {
			v, err := auth.NewValidator(a.Cfg.Auth)
			if err != nil {
				return err
			}
			routes.Use(auth.Middleware(v, a.Cfg.Auth.SkipPaths...))
		}
		api.NewHandler(svc.clips, svc.orchestrator, a.Logger).Register(routes, srv.RateLimiter())
		return nil
	})
	app.OnReady(httpComp.Start)
	app.OnStop(httpComp.Stop)

	return app.Run(ctx)
}
