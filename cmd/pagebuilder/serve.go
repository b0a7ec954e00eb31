package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	pagebuilder "github.com/goliatone/go-pagebuilder"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/server"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve previews and the page API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	log, err := logging.New().
		FromBuffer(cmd.ErrOrStderr()).
		FromPath(cfg.Log.Path).
		WithLevel(cfg.Log.Level).
		WithFormat(cfg.Log.Format).
		Make()
	if err != nil {
		return err
	}
	defer log.Close()
	logger := log.Logger

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	palette := properties.NewPalette(properties.DefaultManifest(), cfg.Theme)
	registry, err := pagebuilder.NewRegistry(pagebuilder.WithPalette(palette), pagebuilder.WithLogger(logger))
	if err != nil {
		return err
	}
	options := []server.Option{
		server.WithRegistry(registry),
		server.WithPalette(palette, "pagebuilder", cfg.Theme),
		server.WithLogger(logger),
	}
	if cfg.Mirror != "" {
		options = append(options, server.WithMirror(persist.NewFileMirror(cfg.Mirror)))
	}
	srv, err := server.New(newService(store, cfg.Store, logger), options...)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("store", cfg.Store.Driver).Msg("pagebuilder: serving")
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("pagebuilder: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
