// Package cli implements crawlctl, the operator-facing command line for
// triggering, pausing, resuming, and searching a running crawler's Mongo
// store directly, grounded on rohmanhakim-docs-crawler/internal/cli's
// cobra root-command layout.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"webcrawler/internal/infra/adapter/persistence/mongo"
)

var (
	mongoURI string
	mongoDB  string
)

var rootCmd = &cobra.Command{
	Use:   "crawlctl",
	Short: "Operational CLI for the crawler's sources and document store.",
	Long: `crawlctl drives the same Mongo-backed store the worker process
reads and writes: trigger an immediate crawl, pause or resume a source's
schedule, list configured sources, or search stored documents by keyword.`,
}

// Execute adds all child commands to rootCmd and runs it. Called by
// main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongodb-uri", envOrDefault("MONGODB_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	rootCmd.PersistentFlags().StringVar(&mongoDB, "mongodb-db", envOrDefault("MONGODB_DB", "webcrawler"), "MongoDB database name")

	rootCmd.AddCommand(triggerCmd, pauseCmd, resumeCmd, listCmd, searchCmd)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// connect dials the store for the duration of a single subcommand
// invocation and returns a cleanup function the caller defers.
func connect(ctx context.Context) (*mongo.DB, func(), error) {
	db, err := mongo.Connect(ctx, mongoURI, mongoDB)
	if err != nil {
		return nil, nil, fmt.Errorf("crawlctl: connect: %w", err)
	}
	return db, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Disconnect(shutdownCtx); err != nil {
			slog.Default().Error("crawlctl: disconnect failed", slog.Any("error", err))
		}
	}, nil
}

// commandContext returns a context bounded to a sane CLI timeout; trigger
// uses a longer one since it blocks on a full crawl run.
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
