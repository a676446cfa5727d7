package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rishivikram/vastra/config"
	"github.com/rishivikram/vastra/database/indexes"
	"github.com/rishivikram/vastra/database/seeders"
	"github.com/rishivikram/vastra/pkg/database"
)

// bootDB loads config and opens the MongoDB connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// vastra seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		fmt.Println("Seeding database…")
		return seeders.RunAll(ctx, database.DB())
	},
}

// vastra db:index — create the indexes the app depends on.
var indexCmd = &cobra.Command{
	Use:   "db:index",
	Short: "Create MongoDB indexes (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		fmt.Println("Ensuring indexes…")
		return indexes.EnsureAll(ctx, database.DB())
	},
}
