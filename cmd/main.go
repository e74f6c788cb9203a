package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	application "tour-monitor/cmd/scraper"
	"tour-monitor/config"
	"tour-monitor/utils"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	log, err := utils.NewLogger(cfg.LogLevel, cfg.DevLogging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 2
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := application.NewApp(cfg, log)
	log.Info("tour price monitor starting", zap.Stringer("config", app))

	summary, err := app.Run(ctx)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		return 1
	}

	fmt.Printf("✓ Run completed: %d routes, %d prices, %d notifications\n",
		summary.Routes, summary.Found, summary.Notified)
	return 0
}
