package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-sync/internal/cache"
	"todo-sync/internal/config"
	"todo-sync/internal/controller"
	"todo-sync/internal/queue"
	"todo-sync/internal/routes"
	"todo-sync/internal/store"
	"todo-sync/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnvFile(".env")
	cfg, err := config.Get()
	if err != nil {
		return err
	}
	logger.Init(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	todos := store.NewMemory()

	// Optional Redis list cache, keyed per store instance
	var listCache cache.ListCache = cache.Nop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.RedisPoolSize, cfg.CacheTTL, uuid.New().String())
		if err != nil {
			logger.Warn(ctx, "Redis unavailable; list cache disabled", "error", err)
		} else {
			defer rc.Close()
			listCache = rc
		}
	}

	// Optional change events
	var events queue.Publisher = queue.Nop{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		queue.EnsureTopic(ctx, brokers, cfg.KafkaTopic, cfg.KafkaPartitions)
		events = queue.NewKafka(ctx, brokers, cfg.KafkaTopic)
	}
	defer func() {
		if err := events.Close(); err != nil {
			logger.Error(ctx, "Kafka producer close failed", "error", err)
		}
	}()

	handler := controller.NewTodos(todos, listCache, events)
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(handler, cfg.AllowedOrigins()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}
