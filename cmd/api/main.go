package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/coupon"
	"marketplace/internal/database"
	"marketplace/internal/handler"
	"marketplace/internal/notification"
	"marketplace/internal/repository"
	"marketplace/internal/router"
	"marketplace/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting marketplace API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	shopRepo := repository.NewShopRepository(pool, logger)
	reportRepo := repository.NewReportRepository(pool, logger)

	validator := coupon.NewValidator(couponRepo, logger)

	// Notifications run after commit and never block a checkout
	dispatcher := notification.NewDispatcher(
		newMailer(cfg.Email, logger),
		newPusher(cfg.Push, logger),
		shopRepo,
		notification.DispatcherConfig{
			MaxConcurrent: cfg.Notification.MaxConcurrent,
			Timeout:       cfg.Notification.Timeout,
		},
		logger,
	)

	// Initialize services
	orderService := service.NewOrderService(orderRepo, couponRepo, validator, dispatcher, logger)
	couponService := service.NewCouponService(validator, logger)
	reportService := service.NewReportService(reportRepo, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Orders:  handler.NewOrderHandler(orderService, logger),
		Coupons: handler.NewCouponHandler(couponService, logger),
		Reports: handler.NewReportHandler(reportService, logger),
	}, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// Let in-flight notifications finish before the pool closes
		if err := dispatcher.Close(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("notifications still pending at shutdown")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

func newMailer(cfg config.EmailConfig, logger zerolog.Logger) notification.Mailer {
	switch cfg.Provider {
	case config.EmailProviderPostmark:
		logger.Info().Str("provider", cfg.Provider).Msg("email notifications enabled")
		return notification.NewPostmarkMailer(cfg.PostmarkServerToken, cfg.From)
	case config.EmailProviderSendGrid:
		logger.Info().Str("provider", cfg.Provider).Msg("email notifications enabled")
		return notification.NewSendGridMailer(cfg.SendGridAPIKey, cfg.From, cfg.FromName)
	default:
		logger.Info().Msg("email provider not configured, logging messages instead")
		return notification.NewLogMailer(logger)
	}
}

func newPusher(cfg config.PushConfig, logger zerolog.Logger) notification.Pusher {
	if !cfg.Enabled {
		logger.Info().Msg("push notifications disabled")
		return nil
	}
	return notification.NewExpoPusher(cfg.Endpoint, cfg.AccessToken, cfg.Timeout)
}
