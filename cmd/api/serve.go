package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/handlers"
	"cloud-ide/backend/internal/service"
	"cloud-ide/backend/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(v *viper.Viper, dotenv []string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the project change feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v, dotenv)
		},
	}
	cmd.PersistentFlags().String("addr", "", "listen address")
	cmd.PersistentFlags().String("cascade-mode", "", "folder rename/delete cascade: deep or shallow")
	bindFlags(v, cmd.PersistentFlags())
	return cmd
}

func runServe(ctx context.Context, v *viper.Viper, dotenv []string) error {
	cfg, logger, err := loadConfig(v)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(dotenv) == 0 {
		logger.Info("no .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	hub := ws.NewHub(logger)
	svc := service.New(store, service.Options{
		Cascade:   cfg.CascadeMode,
		Logger:    logger,
		Publisher: hub,
	})
	h := handlers.New(svc, hub, cfg.WebhookSecret, logger)
	provider := auth.NewJWTProvider(cfg.JWTSecret, cfg.JWTIssuer)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.NewRouter(h, provider, cfg.AllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("starting server", "addr", cfg.Addr, "driver", cfg.DatabaseDriver, "cascade", cfg.CascadeMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "could not start server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
