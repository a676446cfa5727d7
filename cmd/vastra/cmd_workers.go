package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rishivikram/vastra/app/jobs"
	"github.com/rishivikram/vastra/pkg/cache"
	"github.com/rishivikram/vastra/pkg/queue"
)

// vastra queue:work — run queue workers without the HTTP server.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process background jobs from the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		if err := cache.Connect(); err != nil {
			return fmt.Errorf("queue workers need redis: %w", err)
		}
		queue.SetDriver(queue.NewRedisDriver(cache.Client(), ""))
		jobs.RegisterAll()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		queue.StartWorkers(ctx, 4)

		fmt.Println("Workers running, press Ctrl+C to stop.")
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		return nil
	},
}
