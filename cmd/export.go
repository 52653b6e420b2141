package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/score"
	"github.com/mgonc/go-poker-metrics/internal/storage"
)

var exportScorecard string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-export the CSV artifacts from an existing scorecard",
	Long: `Rebuild the exports/ directory (stat, subgroup and group CSVs plus
overall.txt) from a scorecard already on disk, without rescoring.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportScorecard, "scorecard", "", "scorecard JSON (default <out>/scorecard.json)")
}

func runExport(cmd *cobra.Command, args []string) error {
	path := exportScorecard
	if path == "" {
		path = filepath.Join(outDir, storage.ScorecardName)
	}
	sc, err := storage.ReadScorecardFile(path)
	if err != nil {
		return err
	}

	store, err := storage.Open(outDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if err := writeExports(store, sc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exports: %s\n", store.Path(storage.ExportsDir))
	return nil
}

// writeExports writes the CSV and overall-score artifacts for a scorecard
// under exports/. Shared by score and export.
func writeExports(store *storage.Store, sc *model.Scorecard) error {
	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"stat_level.csv", score.StatLevelHeader, score.StatLevelRows(sc)},
		{"subgroup_level.csv", score.SubgroupLevelHeader, score.SubgroupLevelRows(sc)},
		{"group_level.csv", score.GroupLevelHeader, score.GroupLevelRows(sc)},
	}
	for _, f := range files {
		if err := store.WriteCSV(filepath.Join(storage.ExportsDir, f.name), f.header, f.rows); err != nil {
			return err
		}
	}
	return store.WriteText(filepath.Join(storage.ExportsDir, "overall.txt"), score.OverallText(sc))
}
