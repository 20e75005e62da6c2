package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/krishi/app/providers"
	"github.com/shashiranjanraj/krishi/pkg/app"
)

var queueWorkersFlag int

// krishi queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued notification jobs from redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := app.Open(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		if c.Redis == nil {
			return errors.New("queue:work needs redis; the in-memory queue only serves its own process")
		}

		k, err := providers.Boot(ctx, c, providers.Options{})
		if err != nil {
			return err
		}
		defer k.Close(context.Background())

		workers := max(queueWorkersFlag, 1)
		fmt.Printf("🚀 Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		c.Queue.Work(ctx, workers)

		<-ctx.Done()
		c.Queue.Wait()
		if n := len(c.Queue.FailedJobs()); n > 0 {
			fmt.Printf("%d jobs failed and were recorded in failed_jobs.\n", n)
		}
		fmt.Println("\n⚡ Queue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
}
