// Command server runs the Krishi HTTP API alone, for deployments that do
// not ship the krishi CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shashiranjanraj/krishi/app/providers"
	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/pkg/app"
	"github.com/shashiranjanraj/krishi/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server: exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.Open(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	k, err := providers.Boot(ctx, c, providers.Options{})
	if err != nil {
		return err
	}
	defer k.Close(context.Background())

	return c.Serve(ctx, ":"+config.AppPort(), c.Handler(k.Routes), config.GetInt("QUEUE_WORKERS", 2))
}
