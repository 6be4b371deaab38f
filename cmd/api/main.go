package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/workgrid/contract-engine/internal/app/bootstrap"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err.Error())
		os.Exit(1)
	}

	rt, err := bootstrap.NewRuntime(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err.Error())
		os.Exit(1)
	}

	if err := rt.RunAPI(ctx); err != nil {
		rt.Logger.Error("api server failed", "error", err.Error())
		os.Exit(1)
	}
}
