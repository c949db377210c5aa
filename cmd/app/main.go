package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pbgym/internal/clock"
	"pbgym/internal/config"
	"pbgym/internal/db"
	"pbgym/internal/email"
	"pbgym/internal/logger"
	"pbgym/internal/occupancy"
	"pbgym/internal/offer"
	"pbgym/internal/pass"
	"pbgym/internal/payment"
	"pbgym/internal/server"
	"pbgym/internal/user"
)

// @title PBGym API
// @version 1.0
// @description API for gym membership and occupancy tracking.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting PBGym application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	loc := cfg.Location()

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	emailService := email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer emailService.Close()
	logger.Info("Email service initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emailService.Start(ctx)

	userRepo := user.NewRepository(database)
	offerRepo := offer.NewRepository(database)
	passRepo := pass.NewRepository(database)
	entryRepo := occupancy.NewRepository(database)

	gateway := payment.NewProviderGateway(cfg.PaymentProviderURL, cfg.PaymentAPIKey, cfg.PaymentTimeout)

	userService := user.NewService(userRepo, cfg.JWTSecret)
	offerService := offer.NewService(offerRepo)
	passService := pass.NewService(passRepo, userRepo, offerRepo, gateway, emailService, loc)
	occupancyService := occupancy.NewService(entryRepo, userRepo, passService)

	// Presence lives in memory; rebuild it from open entries before any
	// scan can arrive.
	if err := occupancyService.Restore(ctx); err != nil {
		logger.Fatalf("Failed to restore occupancy state: %v", err)
	}
	logger.Infof("Occupancy restored: %d inside", occupancyService.CurrentCount())

	scheduler := clock.New(passService, loc, cfg.BillingHour)
	if err := scheduler.Start(); err != nil {
		logger.Fatalf("Failed to start sweep scheduler: %v", err)
	}
	defer scheduler.Stop()

	srv := server.New(
		cfg,
		user.NewHandler(userService),
		offer.NewHandler(offerService),
		pass.NewHandler(passService),
		occupancy.NewHandler(occupancyService),
		emailService,
	)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
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

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
