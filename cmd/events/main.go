// Command events tails the todo change topic and logs each event.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todo-sync/internal/config"
	"todo-sync/internal/worker"
	"todo-sync/pkg/logger"
)

func main() {
	group := flag.String("group", "todo-events-tail", "Kafka consumer group id")
	flag.Parse()

	config.LoadEnvFile(".env")
	cfg, err := config.Get()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := worker.Run(ctx, cfg.Brokers(), cfg.KafkaTopic, *group, worker.LogEvent)
	if err != nil {
		logger.Error(ctx, "Event consumer failed", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info(ctx, "Event consumer stopped", "processed", n)
}
