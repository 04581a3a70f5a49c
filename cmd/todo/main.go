package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todo-sync/internal/cli"
	"todo-sync/internal/client"
	"todo-sync/internal/config"
	"todo-sync/internal/view"
	"todo-sync/pkg/logger"
)

func main() {
	// Root flags (apply to every subcommand)
	groupPending := flag.Bool("group", false, "group output by pending/done")
	flag.Parse()

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stderr)
		os.Exit(2)
	}

	config.LoadEnvFile(".env")
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Diagnostics go to a file so they never draw over the list.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log file:", err)
		os.Exit(1)
	}
	logger.Init(logFile, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	v := view.New(client.New(cfg.APIURL, cfg.Timeout))
	code := cli.Run(ctx, v, args, cli.Options{
		Group: *groupPending,
	})
	stop()
	_ = logFile.Close()
	os.Exit(code)
}
