package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/natevvv/osm-tile-routing/pkg/server/openapi_server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	router, err := newRouter(ctx, cfg, client, logger)
	if err != nil {
		return err
	}
	resolver, err := newResolver(cfg, client)
	if err != nil {
		return err
	}

	service := openapi_server.NewDefaultApiService(router, resolver, logger)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: openapi_server.NewServer(service, cfg.Server.TilesDir),
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("route api listening", "addr", server.Addr, "navigator", router.Navigator(), "tiles", cfg.TilesBaseURL)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		router.Kill()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
