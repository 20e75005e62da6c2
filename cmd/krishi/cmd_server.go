package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/krishi/app/providers"
	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/pkg/app"
	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/router"
)

var (
	servePortFlag    string
	serveWorkersFlag int
)

// krishi serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server with queue workers and the scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		port := servePortFlag
		if port == "" {
			port = config.AppPort()
		}
		logger.Info("krishi: starting", "env", config.AppEnv(), "port", port)
		return c.Serve(ctx, ":"+port, c.Handler(k.Routes), serveWorkersFlag)
	},
}

// krishi route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := router.New()
		var k *providers.Krishi
		k.Routes(r)
		return app.RouteList(os.Stdout, r)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePortFlag, "port", "p", "", "Port to listen on (default APP_PORT)")
	serveCmd.Flags().IntVarP(&serveWorkersFlag, "workers", "w", 2, "Number of queue workers")
}
