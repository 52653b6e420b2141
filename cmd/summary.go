package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/report"
)

var summaryCounts string

// summaryCmd is the cobra command for displaying a high-level counts overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of a counts manifest",
	Long: `Display aggregate information about a stat counts manifest: input and
catalog provenance, hands per month and group, and per-group stat coverage.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryCounts, "counts", "", "stat counts manifest (default <out>/stat_counts.json)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	man, err := readCounts(summaryCounts)
	if err != nil {
		return err
	}
	if man.HandsProcessed == 0 {
		fmt.Fprintln(os.Stdout, "No hands counted yet. Run 'pokermetrics run' to add some.")
		return nil
	}

	report.SummaryTables(os.Stdout, man)
	return nil
}
