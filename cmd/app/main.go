package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carexyz/internal/booking"
	"carexyz/internal/catalog"
	"carexyz/internal/clock"
	"carexyz/internal/config"
	"carexyz/internal/db"
	"carexyz/internal/email"
	"carexyz/internal/logger"
	"carexyz/internal/payment"
	"carexyz/internal/server"
	"carexyz/internal/user"
)

// @title Care.xyz API
// @version 1.0
// @description Caregiving service booking with Stripe checkout.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	defer logger.Sync()
	logger.Info("Starting Care.xyz application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("Invalid LOG_LEVEL, keeping default", "level", cfg.LogLevel, "error", err)
	}
	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY is empty; checkout requests will fail")
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	emailService := email.New(email.Options{
		From:          cfg.EmailFrom,
		FromName:      cfg.EmailFromName,
		SMTPHost:      cfg.SMTPHost,
		SMTPPort:      cfg.SMTPPort,
		SMTPUser:      cfg.SMTPUser,
		SMTPPass:      cfg.SMTPPass,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		AppURL:        cfg.AppURL,
	})
	defer emailService.Close()
	logger.Info("Email service initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emailService.Start(ctx)

	gateway := payment.NewStripeGateway(payment.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Timeout:       cfg.GatewayTimeout,
	})

	services := catalog.NewCatalog(catalog.NewRepository(database))
	userRepo := user.NewRepository(database)
	userService := user.NewService(userRepo, cfg.JWTSecret)

	bookingService := booking.NewService(
		booking.NewRepository(database),
		services,
		userRepo,
		emailService,
		clock.NewSystem(),
		booking.Timeouts{
			Catalog: cfg.CatalogTimeout,
			Store:   cfg.StoreTimeout,
			Notify:  cfg.NotifyTimeout,
		},
	)
	paymentService := payment.NewService(bookingService, services, gateway, payment.Options{
		AppURL:         cfg.AppURL,
		Currency:       cfg.PaymentCurrency,
		GatewayTimeout: cfg.GatewayTimeout,
	})

	srv := server.New(cfg, server.Handlers{
		Users:    user.NewHandler(userService),
		Catalog:  catalog.NewHandler(services),
		Bookings: booking.NewHandler(bookingService),
		Payments: payment.NewHandler(paymentService),
	}, emailService,
		server.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return db.Ping(ctx, database) }},
		server.HealthCheck{Name: "redis", Check: emailService.Check},
	)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	// Stop the mail worker after in-flight requests have queued their messages.
	cancel()

	logger.Info("Server stopped")
}
