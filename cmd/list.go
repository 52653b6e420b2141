package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/storage"
)

var listCounts string

var listCmd = &cobra.Command{
	Use:       "list [months|groups|stats]",
	Short:     "List the months, groups or stats present in a counts manifest",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"months", "groups", "stats"},
	RunE:      runList,
}

func init() {
	listCmd.Flags().StringVar(&listCounts, "counts", "", "stat counts manifest (default <out>/stat_counts.json)")
}

func runList(cmd *cobra.Command, args []string) error {
	man, err := readCounts(listCounts)
	if err != nil {
		return err
	}

	what := "months"
	if len(args) == 1 {
		what = args[0]
	}

	switch what {
	case "months":
		months := man.Months()
		if len(months) == 0 {
			fmt.Fprintln(os.Stdout, "No months counted yet. Run 'pokermetrics run' to add some.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-8s  %6s\n", "MONTH", "HANDS")
		fmt.Fprintf(os.Stdout, "%-8s  %6s\n", "────────", "──────")
		for _, m := range months {
			total := 0
			for _, n := range man.HandCounts[m] {
				total += n
			}
			fmt.Fprintf(os.Stdout, "%-8s  %6d\n", m, total)
		}
	case "groups":
		groups := man.Groups()
		if len(groups) == 0 {
			fmt.Fprintln(os.Stdout, "No groups counted yet.")
			return nil
		}
		for _, g := range groups {
			fmt.Fprintln(os.Stdout, string(g))
		}
	case "stats":
		stats := man.StatIDs()
		if len(stats) == 0 {
			fmt.Fprintln(os.Stdout, "No stats counted yet.")
			return nil
		}
		for _, id := range stats {
			fmt.Fprintln(os.Stdout, id)
		}
	default:
		return fmt.Errorf("unknown listing %q: want months, groups or stats", what)
	}
	return nil
}

// resolveCounts falls back to the default manifest location under the
// artifact directory.
func resolveCounts(path string) string {
	if path == "" {
		return filepath.Join(outDir, storage.ManifestName)
	}
	return path
}

// readCounts loads the manifest from an explicit path or the default
// location under the artifact directory.
func readCounts(path string) (*model.Manifest, error) {
	path = resolveCounts(path)
	man, err := storage.ReadManifestFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no counts at %s: run 'pokermetrics run' first", path)
		}
		return nil, err
	}
	return man, nil
}
