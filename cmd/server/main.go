package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kalaasutra/storefront/internal/auth"
	"github.com/kalaasutra/storefront/internal/config"
	"github.com/kalaasutra/storefront/internal/handlers"
	"github.com/kalaasutra/storefront/internal/repository"
	"github.com/kalaasutra/storefront/internal/service"
	"github.com/kalaasutra/storefront/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err == nil {
		err = cfg.ValidateAPI()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting kalaasutra api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"database_driver", cfg.Database.Driver,
		"log_level", cfg.LogLevel,
	)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run serves the API until SIGINT/SIGTERM. Deferred cleanup runs before it returns.
func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	// Initialize storage
	db, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var productRepo repository.ProductRepository = repository.NewSQLProductRepository(db)
	orderRepo := repository.NewSQLOrderRepository(db)

	if cfg.Database.SeedCatalog {
		n, err := repository.SeedProducts(ctx, productRepo, repository.DefaultCatalog())
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		if n > 0 {
			log.Info("catalog seeded", "products", n)
		}
	}

	// Product cache is optional
	if cfg.Cache.RedisAddr != "" {
		client, err := repository.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Warn("product cache disabled", "error", err)
		} else {
			defer client.Close()
			productRepo = repository.NewCachedProductRepository(productRepo, client, cfg.Cache.TTL, log)
			log.Info("product cache enabled", "redis_addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
		}
	}

	if cfg.Payments.RazorpayKeySecret == "" {
		log.Warn("RAZORPAY_KEY_SECRET is empty, payment verification is disabled")
	}

	// Initialize services
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(repository.NewSQLUserRepository(db), tokens, cfg.Auth.AllowPrivilegedSignup)
	productService := service.NewProductService(productRepo)
	orderService := service.NewOrderService(orderRepo, productRepo)
	paymentService := service.NewPaymentService(
		repository.NewSQLPaymentRepository(db),
		orderRepo,
		cfg.Payments.RazorpayKeyID,
		cfg.Payments.RazorpayKeySecret,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, cfg.Database.Driver),
	)

	router := handlers.NewRouter(handlers.RouterOptions{
		Auth:           authService,
		Products:       productService,
		Orders:         orderService,
		Payments:       paymentService,
		DB:             db,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		LoginRateLimit: cfg.Auth.LoginRateLimit,
		Registry:       registry,
		Logger:         log,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	}

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
