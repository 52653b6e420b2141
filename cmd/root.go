package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/applog"
	"github.com/mgonc/go-poker-metrics/internal/config"
)

var (
	outDir     string
	appCfgPath string
	logLevel   string
	logFile    string

	// appCfg is loaded once in the root PersistentPreRunE and read by
	// commands that take defaults from the settings file.
	appCfg *config.App
)

var rootCmd = &cobra.Command{
	Use:   "pokermetrics",
	Short: "Poker hand behavioral stats tool",
	Long:  "Count opportunities and attempts for catalog-defined poker stats from enriched hand histories, then score them against configured ideals.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		app, err := config.LoadApp(appCfgPath)
		if err != nil {
			return err
		}
		appCfg = app

		// Explicit flags win over the settings file.
		level, file := app.Logger.Level, app.Logger.File
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			file = logFile
		}
		if !cmd.Flags().Changed("out") && app.Output.Dir != "" {
			outDir = app.Output.Dir
		}
		applog.Init(level, file)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "out", "artifact directory")
	rootCmd.PersistentFlags().StringVar(&appCfgPath, "config", "", "application settings file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log to this rotating JSON file instead of stderr")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(handsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(cleanCmd)
}
