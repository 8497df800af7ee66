package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"webcrawler/internal/infra/adapter/persistence/mongo"
	"webcrawler/internal/usecase/search"
)

var (
	searchMode        string
	searchSourceID    string
	searchContentType string
	searchLimit       int
	searchOffset      int
)

var searchCmd = &cobra.Command{
	Use:   "search KEYWORDS...",
	Short: "Search stored documents by keyword.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keywords := args[0]
		for _, a := range args[1:] {
			keywords += " " + a
		}

		ctx, cancel := commandContext(30 * time.Second)
		defer cancel()

		db, cleanup, err := connect(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		documents := mongo.NewDocumentRepo(db)
		engine := search.New(documents)

		mode := search.ModeAND
		if searchMode == "OR" {
			mode = search.ModeOR
		}

		results, err := engine.Search(ctx, search.Query{
			Keywords:    keywords,
			Mode:        mode,
			SourceID:    searchSourceID,
			ContentType: searchContentType,
			Limit:       searchLimit,
			Offset:      searchOffset,
		})
		if err != nil {
			return fmt.Errorf("crawlctl search: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("no matches")
			return nil
		}

		for _, r := range results {
			fmt.Printf("[%.3f] %s\n  %s\n  %s\n\n", r.RelevanceScore, r.Title, r.URL, r.Snippet)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "AND", "boolean mode: AND or OR")
	searchCmd.Flags().StringVar(&searchSourceID, "source", "", "restrict results to this source")
	searchCmd.Flags().StringVar(&searchContentType, "content-type", "", "restrict results to this content type")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "pagination offset")
}
