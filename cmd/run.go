package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/aggregator"
	"github.com/mgonc/go-poker-metrics/internal/catalog"
	"github.com/mgonc/go-poker-metrics/internal/report"
)

var (
	runInput     string
	runCatalog   string
	runMaxErrors int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Count stat opportunities and attempts from a hand history stream",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "enriched hand records, one JSON object per line (.gz/.zst/.bz2 ok)")
	runCmd.Flags().StringVar(&runCatalog, "catalog", "", "stat catalog YAML")
	runCmd.Flags().IntVar(&runMaxErrors, "max-errors", -1, "abort after this many malformed lines (-1 = never)")
	runCmd.MarkFlagRequired("input")
	runCmd.MarkFlagRequired("catalog")
}

func runRun(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(runCatalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	s, err := aggregator.New(cat, outDir)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer s.Close()
	s.MaxErrors = runMaxErrors

	fmt.Fprintf(os.Stdout, "Counting %s...\n", runInput)
	if err := s.Run(cmd.Context(), runInput); err != nil {
		return err
	}
	man, sum, err := s.Finish()
	if err != nil {
		return err
	}

	report.PrintRunSummary(os.Stdout, sum)
	report.SummaryTables(os.Stdout, man)
	return nil
}
