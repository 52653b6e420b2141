package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/score"
	"github.com/mgonc/go-poker-metrics/internal/storage"
)

var (
	explainScorecard string
	explainStat      string
	explainGroup     string
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain how one stat was scored",
	Long: `Print the time-decayed percentage, score, sample size and grade note
for one stat, per analysis group, from an existing scorecard.`,
	Args: cobra.NoArgs,
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().StringVar(&explainScorecard, "scorecard", "", "scorecard JSON (default <out>/scorecard.json)")
	explainCmd.Flags().StringVar(&explainStat, "stat", "", "stat id to explain")
	explainCmd.Flags().StringVar(&explainGroup, "group", "", "limit to one analysis group")
	explainCmd.MarkFlagRequired("stat")
}

func runExplain(cmd *cobra.Command, args []string) error {
	path := explainScorecard
	if path == "" {
		path = filepath.Join(outDir, storage.ScorecardName)
	}
	sc, err := storage.ReadScorecardFile(path)
	if err != nil {
		return err
	}

	byGroup, ok := sc.StatLevel[explainStat]
	if !ok {
		fmt.Fprintf(os.Stderr, "No scored entry for stat %q\n", explainStat)
		return nil
	}

	shown := 0
	for _, g := range sortedScoreGroups(byGroup) {
		if explainGroup != "" && string(g) != explainGroup {
			continue
		}
		printStatScore(explainStat, g, byGroup[g])
		shown++
	}
	if shown == 0 {
		fmt.Fprintf(os.Stderr, "No scored entry for %s in group %q\n", explainStat, explainGroup)
	}
	return nil
}

func printStatScore(statID string, g model.GroupID, rec model.StatScore) {
	fmt.Fprintf(os.Stdout, "\n%s / %s\n", statID, g)
	fmt.Fprintf(os.Stdout, "  Pct (time decay)   : %.2f\n", rec.PctTimeDecay)
	fmt.Fprintf(os.Stdout, "  Score (time decay) : %.2f (%s)\n", rec.ScoreTimeDecay, score.ScoreLabel(rec.ScoreTimeDecay))
	fmt.Fprintf(os.Stdout, "  Months used        : %d\n", rec.MonthsUsed)
	if rec.Note != "" {
		fmt.Fprintf(os.Stdout, "  Grade              : %s  %s\n", rec.Grade, rec.Note)
	}
}

func sortedScoreGroups(m map[model.GroupID]model.StatScore) []model.GroupID {
	out := make([]model.GroupID, 0, len(m))
	for g := range m {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
