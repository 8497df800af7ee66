package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"webcrawler/internal/infra/adapter/persistence/mongo"
)

var (
	listProjectID string
	listLimit     int
	listOffset    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources and their current status.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(30 * time.Second)
		defer cancel()

		db, cleanup, err := connect(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		sources := mongo.NewSourceRepo(db)
		list, err := sources.List(ctx, listProjectID, listLimit, listOffset)
		if err != nil {
			return fmt.Errorf("crawlctl list: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("no sources found")
			return nil
		}

		for _, src := range list {
			fmt.Printf("%-24s %-10s %-8s %s\n", src.ID, src.Status, src.ContentType, src.URL)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listProjectID, "project", "", "restrict to sources belonging to this project (empty lists all)")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum number of sources to list")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "pagination offset")
}
