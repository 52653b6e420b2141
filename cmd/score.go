package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/config"
	"github.com/mgonc/go-poker-metrics/internal/report"
	"github.com/mgonc/go-poker-metrics/internal/score"
	"github.com/mgonc/go-poker-metrics/internal/storage"
)

var (
	scoreCounts string
	scoreConfig string
	scoreForce  bool
	scoreShow   bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Build a scorecard from stat counts and a scoring config",
	Args:  cobra.NoArgs,
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreCounts, "counts", "", "stat counts manifest (default <out>/stat_counts.json)")
	scoreCmd.Flags().StringVar(&scoreConfig, "config", "", "scoring config YAML")
	scoreCmd.Flags().BoolVar(&scoreForce, "force", false, "rebuild even when the cache is current")
	scoreCmd.Flags().BoolVar(&scoreShow, "show", false, "render the scorecard tables after building")
	scoreCmd.MarkFlagRequired("config")
}

func runScore(cmd *cobra.Command, args []string) error {
	countsPath := resolveCounts(scoreCounts)

	cfg, err := config.Load(scoreConfig)
	if err != nil {
		return err
	}

	store, err := storage.Open(outDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	key, err := score.NewCacheKey(countsPath, cfg.Hash())
	if err != nil {
		return fmt.Errorf("stat counts: %w", err)
	}
	cachePath := cfg.CachePath(outDir)

	if cfg.Cache.Enabled && !scoreForce {
		if sc, scPath, ok := score.LoadCache(cachePath, key); ok {
			fmt.Fprintf(os.Stdout, "Scorecard up to date: %s (use --force to rebuild)\n", scPath)
			if scoreShow {
				report.ScoreTables(os.Stdout, sc)
			}
			return nil
		}
	}

	man, err := storage.ReadManifestFile(countsPath)
	if err != nil {
		return err
	}

	sc := score.Build(man, cfg, countsPath, scoreConfig)
	if err := store.WriteScorecard(sc); err != nil {
		return err
	}
	if err := writeExports(store, sc); err != nil {
		return err
	}
	if cfg.Cache.Enabled {
		score.SaveCache(cachePath, key, store.Path(storage.ScorecardName), sc)
	}

	fmt.Fprintf(os.Stdout, "Scorecard: %s\n", store.Path(storage.ScorecardName))
	fmt.Fprintf(os.Stdout, "Exports:   %s\n", store.Path(storage.ExportsDir))
	if scoreShow {
		report.ScoreTables(os.Stdout, sc)
	}
	return nil
}
