package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"webcrawler/internal/infra/adapter/persistence/mongo"
	"webcrawler/internal/infra/fetcher"
	"webcrawler/internal/infra/parser"
	"webcrawler/internal/usecase/crawl"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger SOURCE_ID",
	Short: "Run a single source's crawl immediately, bypassing its schedule.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceID := args[0]

		ctx, cancel := commandContext(10 * time.Minute)
		defer cancel()

		db, cleanup, err := connect(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		fetch, err := fetcher.New(fetcher.DefaultConfig())
		if err != nil {
			return fmt.Errorf("crawlctl trigger: %w", err)
		}
		defer fetch.Close()

		parsers := parser.NewFactory(fetch).CreateParsers()
		sources := mongo.NewSourceRepo(db)
		documents := mongo.NewDocumentRepo(db)
		stats := mongo.NewCrawlStatsRepo(db)

		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		manager := crawl.NewManager(fetch, parsers, sources, documents, stats, nil, logger)

		fmt.Printf("triggering crawl for source %s\n", sourceID)
		if err := manager.CrawlSource(ctx, sourceID); err != nil {
			return fmt.Errorf("crawl failed: %w", err)
		}
		fmt.Println("crawl finished")
		return nil
	},
}
