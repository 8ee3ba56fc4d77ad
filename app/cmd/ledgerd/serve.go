package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/lending-ledger/app/httpapi"
)

type serveOptions struct {
	migrate bool
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, root, opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Create missing tables before serving")

	return cmd
}

func runServe(ctx context.Context, root *rootOptions, opts *serveOptions, cmd *cobra.Command) error {
	rt, err := bootstrap(ctx, root.configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.close(context.WithoutCancel(ctx))

	if opts.migrate {
		if err = rt.store.Migrate(ctx); err != nil {
			return err
		}
	}

	handlers, err := buildHandlers(rt.store, rt.observability())
	if err != nil {
		return err
	}

	serverOptions := []httpapi.Option{
		httpapi.WithRequestTimeout(rt.cfg.HTTP.RequestTimeout),
		httpapi.WithHealthCheck(rt.conns.Ping),
		httpapi.WithLogger(rt.contextualLogger),
	}

	if rt.metricsHandler != nil {
		serverOptions = append(serverOptions, httpapi.WithMetricsHandler(rt.cfg.Metrics.Path, rt.metricsHandler))
	}

	api, err := httpapi.NewServer(handlers, serverOptions...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              rt.cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: rt.cfg.HTTP.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)

	go func() {
		rt.logger.Info("http server listening", "addr", srv.Addr, "version", version)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil

	case <-ctx.Done():
		rt.logger.Info("shutting down http server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rt.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		rt.logger.Error("http server shutdown failed", "error", err.Error())
		return err
	}

	return nil
}
