package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/report"
	"github.com/mgonc/go-poker-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the artifact directory. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(outDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	cGreeting.Println("pokermetrics shell")
	cMuted.Printf("store: %s  |  type 'help' or 'exit'\n", store.Dir)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("pokermetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "ls":
			shellLs(store)
		case "summary":
			shellSummary()
		case "show":
			shellShow(args)
		case "trend":
			shellTrend(args)
		case "score":
			shellScore()
		case "explain":
			shellExplain(args)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q — type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"ls", "list the stored artifacts"},
		{"summary", "counts manifest overview"},
		{"show [month] [group] [stat]", "counter cells; '-' skips a filter"},
		{"trend <stat> [group]", "month-over-month counts for one stat"},
		{"score", "render the scorecard tables"},
		{"explain <stat> [group]", "grade detail for one scored stat"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-30s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellLs(store *storage.Store) {
	arts, err := store.ListArtifacts()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(arts) == 0 {
		cMuted.Println("No artifacts yet. Run 'pokermetrics run' first.")
		return
	}
	cHeader.Fprintf(os.Stdout, "%-44s  %10s\n", "ARTIFACT", "BYTES")
	cMuted.Fprintf(os.Stdout, "%-44s  %10s\n", strings.Repeat("─", 44), "──────────")
	for _, a := range arts {
		fmt.Fprintf(os.Stdout, "%-44s  %10d\n", a.Rel, a.Size)
	}
}

func shellSummary() {
	man, ok := shellCounts()
	if !ok {
		return
	}
	report.SummaryTables(os.Stdout, man)
}

func shellShow(args []string) {
	var month, stat string
	var group model.GroupID
	if len(args) > 0 && args[0] != "-" {
		month = args[0]
	}
	if len(args) > 1 && args[1] != "-" {
		g, err := model.ParseGroupID(args[1])
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		group = g
	}
	if len(args) > 2 && args[2] != "-" {
		stat = args[2]
	}

	man, ok := shellCounts()
	if !ok {
		return
	}
	report.StatTable(os.Stdout, man, month, group, stat)
}

func shellTrend(args []string) {
	if len(args) == 0 {
		cError.Fprintln(os.Stderr, "usage: trend <stat> [group]")
		return
	}
	man, ok := shellCounts()
	if !ok {
		return
	}
	groups := man.Groups()
	if len(args) > 1 {
		g, err := model.ParseGroupID(args[1])
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		groups = []model.GroupID{g}
	}
	shown := 0
	for _, g := range groups {
		shown += report.TrendTable(os.Stdout, man, args[0], g)
	}
	if shown == 0 {
		cMuted.Printf("no counts for stat %q\n", args[0])
	}
}

func shellScore() {
	sc, ok := shellScorecard()
	if !ok {
		return
	}
	report.ScoreTables(os.Stdout, sc)
}

func shellExplain(args []string) {
	if len(args) == 0 {
		cError.Fprintln(os.Stderr, "usage: explain <stat> [group]")
		return
	}
	sc, ok := shellScorecard()
	if !ok {
		return
	}
	byGroup, found := sc.StatLevel[args[0]]
	if !found {
		cMuted.Printf("no scored entry for stat %q\n", args[0])
		return
	}
	shown := 0
	for _, g := range sortedScoreGroups(byGroup) {
		if len(args) > 1 && string(g) != args[1] {
			continue
		}
		printStatScore(args[0], g, byGroup[g])
		shown++
	}
	if shown == 0 && len(args) > 1 {
		cMuted.Printf("no scored entry for %s in group %q\n", args[0], args[1])
	}
}

// shellCounts loads the manifest from the store, reporting problems to the
// terminal instead of ending the session.
func shellCounts() (*model.Manifest, bool) {
	man, err := readCounts("")
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, false
	}
	return man, true
}

func shellScorecard() (*model.Scorecard, bool) {
	sc, err := storage.ReadScorecardFile(filepath.Join(outDir, storage.ScorecardName))
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, false
	}
	return sc, true
}
