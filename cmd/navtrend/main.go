package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/navtrend/navtrend/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	app := &cli.App{
		Name:  "navtrend",
		Usage: "track ETF net asset values since a baseline date",
		Commands: []*cli.Command{
			produceCommand(&cfg),
			scheduleCommand(&cfg),
			fetchCommand(&cfg),
			serveCommand(&cfg),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("navtrend: %v", err)
	}
}
