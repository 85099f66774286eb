package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/Attentive/internal/api"
	"github.com/soaringjerry/Attentive/internal/db"
	"github.com/soaringjerry/Attentive/internal/middleware"
	"github.com/soaringjerry/Attentive/internal/services"
	"github.com/soaringjerry/Attentive/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		logger := telemetry.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := telemetry.SetupTracing(ctx, "attentive", cfg.Commit, cfg.OTELEndpoint)
		if err != nil {
			logger.Warn("tracing disabled", "err", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				logger.Warn("flush traces", "err", err)
			}
		}()

		store, closeStore, err := db.Open(ctx, cfg.Driver, cfg.DBPath, cfg.MigrationsDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				logger.Warn("close store", "err", err)
			}
		}()
		if cfg.JWTSecret == "" {
			logger.Warn("ATTENTIVE_JWT_SECRET is not set; using the development secret")
		}

		authn := middleware.NewAuthenticator(cfg.JWTSecret)
		auth := services.NewAuthService(store, authn.SignToken, cfg.TokenTTL)
		router := api.NewRouter(store, authn, auth, api.Options{
			Logger:         logger,
			CORSOrigins:    cfg.CORSOrigins,
			Commit:         cfg.Commit,
			BuildTime:      cfg.BuildTime,
			StaticDir:      cfg.StaticDir,
			DevFrontendURL: cfg.DevFrontendURL,
		})

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           router.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("attentive server listening", "addr", cfg.Addr, "driver", cfg.Driver)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
}
