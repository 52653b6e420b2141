package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/report"
)

var (
	trendCounts string
	trendStat   string
	trendGroup  string
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Month-over-month trend for one stat",
	Args:  cobra.NoArgs,
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().StringVar(&trendCounts, "counts", "", "stat counts manifest (default <out>/stat_counts.json)")
	trendCmd.Flags().StringVar(&trendStat, "stat", "", "stat id to trend")
	trendCmd.Flags().StringVar(&trendGroup, "group", "", "limit to one analysis group (default: every group with data)")
	trendCmd.MarkFlagRequired("stat")
}

func runTrend(cmd *cobra.Command, args []string) error {
	man, err := readCounts(trendCounts)
	if err != nil {
		return err
	}

	groups := man.Groups()
	if trendGroup != "" {
		g, err := model.ParseGroupID(trendGroup)
		if err != nil {
			return err
		}
		groups = []model.GroupID{g}
	}

	shown := 0
	for _, g := range groups {
		shown += report.TrendTable(os.Stdout, man, trendStat, g)
	}
	if shown == 0 {
		fmt.Fprintf(os.Stderr, "No counts found for stat %q\n", trendStat)
	}
	return nil
}
