// Package main запускает HTTP-сервер сервиса управления поставщиками.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/vendor-management-system/internal/config"
	"github.com/mmeshcher/vendor-management-system/internal/handler"
	"github.com/mmeshcher/vendor-management-system/internal/logger"
	"github.com/mmeshcher/vendor-management-system/internal/metrics"
	"github.com/mmeshcher/vendor-management-system/internal/performance"
	"github.com/mmeshcher/vendor-management-system/internal/repository"
	"github.com/mmeshcher/vendor-management-system/internal/service"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger initialization error: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("application terminated with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.NewPostgresRepository(ctx, cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("database initialization error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	recorder := performance.NewRecorder(repo)
	trigger := performance.NewTrigger(performance.NewCalculator(repo), recorder, zl, m)

	svc := service.NewService(repo, trigger, recorder, zl)
	defer func() {
		if err := svc.Close(); err != nil {
			zl.Warn("close storage", zap.Error(err))
		}
	}()

	h := handler.NewHandler(svc, zl, m)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("starting vendor management server", zap.String("addr", cfg.RunAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Остановка по сигналу или по ошибке сервера.
	g.Go(func() error {
		<-ctx.Done()
		zl.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		zl.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}
