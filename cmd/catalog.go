package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/catalog"
	"github.com/mgonc/go-poker-metrics/internal/report"
)

var catalogPath string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect a stat catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the stats a catalog defines",
	Args:  cobra.NoArgs,
	RunE:  runCatalogShow,
}

var catalogLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report suspicious stat definitions",
	Args:  cobra.NoArgs,
	RunE:  runCatalogLint,
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "stat catalog YAML")
	catalogCmd.MarkPersistentFlagRequired("catalog")

	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogLintCmd)
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Catalog: %s (version %d, %d stats, metric %s/%d)\n",
		cat.Path, cat.Version, len(cat.Stats), cat.Metric.Type, cat.Metric.Decimals)
	report.CatalogTable(os.Stdout, cat)
	return nil
}

func runCatalogLint(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	findings := cat.Lint()
	if len(findings) == 0 {
		fmt.Fprintln(os.Stdout, "No findings.")
		return nil
	}
	for _, f := range findings {
		fmt.Fprintf(os.Stdout, "%s: %s\n", f.StatID, f.Message)
	}
	fmt.Fprintf(os.Stdout, "\n%d findings\n", len(findings))
	return nil
}
