package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"assetdesk/internal/api"
	"assetdesk/internal/geo"
	"assetdesk/internal/store"
	"assetdesk/internal/workflow"
)

func newServeCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			setupLogger(cfg.Logging.Level)

			database, err := cctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			// First run: seed the admin account and print its password.
			users, err := store.ListUsers(cmd.Context(), database)
			if err != nil {
				return fmt.Errorf("check users: %w", err)
			}
			if len(users) == 0 {
				password, err := createAdmin(cmd.Context(), database, "admin")
				if err != nil {
					return fmt.Errorf("create admin: %w", err)
				}
				printAdminCredentials(cmd.OutOrStdout(), "admin", password)
			}

			// The signing secret comes from configuration when set, and is
			// otherwise generated once and persisted.
			jwtSecret := cfg.Auth.JWTSecret
			if jwtSecret == "" {
				jwtSecret, err = store.GetJWTSecret(cmd.Context(), database)
				if err != nil {
					return fmt.Errorf("get JWT secret: %w", err)
				}
			}

			chain, err := workflow.ParseChain(cfg.Approval.Chain)
			if err != nil {
				return err
			}
			engine := &workflow.Engine{DB: database, Chain: chain}

			var locator geo.Provider
			if cfg.Geolocation.Endpoint != "" {
				locator = geo.NewCached(
					&geo.HTTPProvider{URL: cfg.Geolocation.Endpoint},
					time.Duration(cfg.Geolocation.TimeoutSeconds)*time.Second,
					time.Duration(cfg.Geolocation.MaxAgeSeconds)*time.Second,
				)
			}

			handler := api.LoggingMiddleware(api.NewRouter(database, jwtSecret, engine, locator))

			server := &http.Server{
				Addr:              cfg.Server.Bind,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			// Graceful shutdown on SIGINT/SIGTERM.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				sig := <-quit
				slog.Info("shutdown signal received", "signal", sig.String())

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := server.Shutdown(ctx); err != nil {
					slog.Error("server forced to shutdown", "error", err)
				}
			}()

			slog.Info("server started", "addr", cfg.Server.Bind,
				"stages", len(chain), "geolocation", cfg.Geolocation.Endpoint != "")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}

			slog.Info("server stopped, closing database")
			return nil
		},
	}
}
