// Command authscreens serves the authentication screens.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/authscreens/app/authscreens"
	"github.com/dmitrymomot/authscreens/core/config"
	"github.com/dmitrymomot/authscreens/core/logger"
)

func main() {
	var cfg authscreens.Config
	config.MustLoad(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := authscreens.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", logger.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		slog.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}
