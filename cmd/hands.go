package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/storage"
)

var (
	handsCounts string
	handsMonth  string
	handsGroup  string
	handsStat   string
	handsKind   string
)

var handsCmd = &cobra.Command{
	Use:   "hands",
	Short: "Print the hand ids behind one counter cell",
	Long: `Resolve a (month, group, stat) cell to its provenance index file and
print the contributing hand ids, one per line. Use --kind to pick the
opportunity or the attempt side of the counter.`,
	Args: cobra.NoArgs,
	RunE: runHands,
}

func init() {
	handsCmd.Flags().StringVar(&handsCounts, "counts", "", "stat counts manifest (default <out>/stat_counts.json)")
	handsCmd.Flags().StringVar(&handsMonth, "month", "", "calendar month (YYYY-MM)")
	handsCmd.Flags().StringVar(&handsGroup, "group", "", "analysis group (e.g. nonko_9max)")
	handsCmd.Flags().StringVar(&handsStat, "stat", "", "stat id")
	handsCmd.Flags().StringVar(&handsKind, "kind", "opps", "which id list: opps or attempts")
	handsCmd.MarkFlagRequired("month")
	handsCmd.MarkFlagRequired("group")
	handsCmd.MarkFlagRequired("stat")
}

func runHands(cmd *cobra.Command, args []string) error {
	if handsKind != "opps" && handsKind != "attempts" {
		return fmt.Errorf("invalid --kind %q: want opps or attempts", handsKind)
	}
	group, err := model.ParseGroupID(handsGroup)
	if err != nil {
		return err
	}

	countsPath := resolveCounts(handsCounts)
	man, err := readCounts(countsPath)
	if err != nil {
		return err
	}

	cell, ok := man.Cell(handsMonth, group, handsStat)
	if !ok {
		fmt.Fprintf(os.Stderr, "No cell for %s / %s / %s\n", handsMonth, group, handsStat)
		return nil
	}
	rel := cell.IndexFiles.Opps
	if handsKind == "attempts" {
		rel = cell.IndexFiles.Attempts
	}

	// Index files live next to the manifest they belong to.
	store, err := storage.Open(filepath.Dir(countsPath))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	ids, err := store.ReadIDs(rel)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(os.Stdout, id)
	}
	return nil
}
