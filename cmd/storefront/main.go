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

	"github.com/kalaasutra/storefront/internal/client"
	"github.com/kalaasutra/storefront/internal/config"
	"github.com/kalaasutra/storefront/internal/storefront"
	"github.com/kalaasutra/storefront/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("storefront stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting kalaasutra storefront",
		"port", cfg.Storefront.Port,
		"api_url", cfg.Storefront.APIURL,
		"fetch_timeout", cfg.Storefront.FetchTimeout,
	)

	api, err := client.New(cfg.Storefront.APIURL)
	if err != nil {
		return err
	}

	content, err := storefront.NewContentStore(cfg.Storefront.ContentFile, log)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	renderer, err := storefront.NewRenderer()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	catalog := storefront.NewCatalog(api.Products, cfg.Storefront.FetchTimeout, log, registry)
	handler := storefront.NewHandler(content, catalog, renderer, log)

	addr := fmt.Sprintf("%s:%s", cfg.Storefront.Host, cfg.Storefront.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      storefront.NewRouter(handler, registry, log),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("storefront listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return content.Watch(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down storefront...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
