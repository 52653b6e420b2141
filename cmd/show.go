package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/report"
)

var (
	showCounts string
	showMonth  string
	showGroup  string
	showStat   string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show counted cells, filtered by month, group and stat",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showCounts, "counts", "", "stat counts manifest (default <out>/stat_counts.json)")
	showCmd.Flags().StringVar(&showMonth, "month", "", "filter to a calendar month (YYYY-MM)")
	showCmd.Flags().StringVar(&showGroup, "group", "", "filter to an analysis group (e.g. nonko_9max)")
	showCmd.Flags().StringVar(&showStat, "stat", "", "filter to a stat id")
}

func runShow(cmd *cobra.Command, args []string) error {
	man, err := readCounts(showCounts)
	if err != nil {
		return err
	}

	var group model.GroupID
	if showGroup != "" {
		group, err = model.ParseGroupID(showGroup)
		if err != nil {
			return err
		}
	}

	report.StatTable(os.Stdout, man, showMonth, group, showStat)
	return nil
}
