// Command kahvekart-server starts the loyalty API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kahvekart/kahve-kart/internal/config"
	"github.com/kahvekart/kahve-kart/internal/cooldown"
	"github.com/kahvekart/kahve-kart/internal/mail"
	"github.com/kahvekart/kahve-kart/internal/migrate"
	"github.com/kahvekart/kahve-kart/internal/observability"
	"github.com/kahvekart/kahve-kart/internal/repository/postgres"
	httpserver "github.com/kahvekart/kahve-kart/internal/server/http"
	"github.com/kahvekart/kahve-kart/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the HTTP server.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("postgres.New", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	stampRepo := postgres.NewStampRepo(db)
	couponRepo := postgres.NewCouponRepo(db)
	tokenRepo := postgres.NewScanTokenRepo(db)

	gate := cooldown.New(cfg.ScanCooldown)
	metrics := observability.NewScanMetrics()
	mailer := mail.NewLogMailer(logger)

	// Services
	authSvc := service.NewAuthService(userRepo, mailer, []byte(cfg.JWTKey), cfg.AccessTTL)
	stampSvc := service.NewStampService(stampRepo)
	couponSvc := service.NewCouponService(couponRepo)
	adminSvc := service.NewAdminService(userRepo)
	scanSvc := service.NewScanService(stampSvc, couponSvc, tokenRepo, gate, metrics, logger, cfg.BackendTimeout, cfg.AllowLegacyGrants)

	app := httpserver.New(authSvc, stampSvc, couponSvc, scanSvc, adminSvc, metrics, []byte(cfg.JWTKey), logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
