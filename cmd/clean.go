package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/storage"
)

var cleanForce bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the generated artifacts",
	Long:  "Permanently delete the counts manifest, scorecard, error log, cache, index files and exports under the artifact directory. Source inputs and configs are never touched.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "skip confirmation prompt")
}

func runClean(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(outDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	if !cleanForce {
		targets, err := store.Clean(false)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			fmt.Fprintln(os.Stdout, "Nothing to clean.")
			return nil
		}
		fmt.Fprintln(os.Stderr, "This will permanently delete:")
		for _, t := range targets {
			fmt.Fprintf(os.Stderr, "  %s\n", store.Path(t))
		}
		fmt.Fprintln(os.Stderr, "Re-run with --force to confirm.")
		return nil
	}

	removed, err := store.Clean(true)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		fmt.Fprintln(os.Stdout, "Nothing to clean.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "Removed %d artifacts from %s\n", len(removed), store.Dir)
	return nil
}
