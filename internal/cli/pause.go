package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"webcrawler/internal/domain/entity"
	"webcrawler/internal/infra/adapter/persistence/mongo"
)

var pauseCmd = &cobra.Command{
	Use:   "pause SOURCE_ID",
	Short: "Pause a source so the scheduler stops running its crawl.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionStatus(args[0], entity.StatusPaused)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume SOURCE_ID",
	Short: "Resume a paused source.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionStatus(args[0], entity.StatusIdle)
	},
}

// transitionStatus reads sourceID's current status and, if the state
// machine allows it, CAS-moves it to target. This mirrors the same atomic
// CompareAndSetStatus the scheduler and crawl manager use, so a pause issued
// from crawlctl can never race a concurrently running crawl.
func transitionStatus(sourceID string, target entity.Status) error {
	ctx, cancel := commandContext(30 * time.Second)
	defer cancel()

	db, cleanup, err := connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	sources := mongo.NewSourceRepo(db)

	src, err := sources.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("crawlctl: %w", err)
	}

	if !entity.CanTransition(src.Status, target) {
		return fmt.Errorf("crawlctl: cannot move source %s from %s to %s", sourceID, src.Status, target)
	}

	ok, err := sources.CompareAndSetStatus(ctx, sourceID, src.Status, target)
	if err != nil {
		return fmt.Errorf("crawlctl: %w", err)
	}
	if !ok {
		return fmt.Errorf("crawlctl: source %s status changed concurrently, retry", sourceID)
	}

	fmt.Printf("source %s moved from %s to %s\n", sourceID, src.Status, target)
	return nil
}
