// Package report renders manifests, scorecards and catalogs as terminal
// tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mgonc/go-poker-metrics/internal/catalog"
	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/score"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func formatPct(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// PrintRunSummary prints the post-run report header.
func PrintRunSummary(w io.Writer, sum model.RunSummary) {
	fmt.Fprintf(w, "\nHands: %d  |  Stats: %d  |  Months: %d  |  Errors: %d\n",
		sum.HandsProcessed, sum.StatsComputed, sum.MonthsGenerated, sum.ErrorCount)
	fmt.Fprintf(w, "Manifest: %s\nIndexes:  %s\n\n", sum.OutputPath, sum.IndexDir)
}

// StatTable renders counter cells, filtered by month, group and stat id;
// empty filter values match everything. Returns the number of rows shown.
func StatTable(w io.Writer, man *model.Manifest, month string, group model.GroupID, statID string) int {
	type row struct {
		month string
		group model.GroupID
		stat  string
		cell  model.StatCell
	}
	var rows []row
	for _, m := range man.Months() {
		if month != "" && m != month {
			continue
		}
		for g, byStat := range man.Counts[m] {
			if group != "" && g != group {
				continue
			}
			for id, cell := range byStat {
				if statID != "" && id != statID {
					continue
				}
				rows = append(rows, row{m, g, id, cell})
			}
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "no matching cells")
		return 0
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.month != b.month {
			return a.month < b.month
		}
		if a.group != b.group {
			return a.group < b.group
		}
		return a.stat < b.stat
	})

	table := newTable(w)
	table.Header("MONTH", "GROUP", "STAT", "OPP", "ATT", "PCT")
	for _, r := range rows {
		table.Append(
			r.month,
			string(r.group),
			r.stat,
			strconv.Itoa(r.cell.Opportunities),
			strconv.Itoa(r.cell.Attempts),
			formatPct(r.cell.Percentage, man.Metric.Decimals)+"%",
		)
	}
	table.Render()
	return len(rows)
}

// SummaryTables prints the manifest overview: header line, hand totals per
// month and group, and per-group stat coverage.
func SummaryTables(w io.Writer, man *model.Manifest) {
	fmt.Fprintf(w, "\nInput: %s  |  Catalog: %s  |  Generated: %s\n",
		man.Input, man.Catalog, man.GeneratedAt)
	fmt.Fprintf(w, "Run: %s  |  Hands: %d  |  Stats: %d  |  Errors: %d\n\n",
		man.RunID, man.HandsProcessed, man.StatsComputed, man.Errors)

	// Hand totals, one row per month, fixed group columns.
	hands := newTable(w)
	header := []any{"MONTH"}
	for _, g := range model.CountGroups {
		header = append(header, strings.ToUpper(string(g)))
	}
	hands.Header(header...)
	for _, m := range monthsOf(man.HandCounts) {
		cells := []any{m}
		for _, g := range model.CountGroups {
			if n, ok := man.HandCounts[m][g]; ok {
				cells = append(cells, strconv.Itoa(n))
			} else {
				cells = append(cells, "—")
			}
		}
		hands.Append(cells...)
	}
	hands.Render()

	// Stat coverage per group across all months.
	type coverage struct {
		stats map[string]bool
		opps  int
		atts  int
	}
	byGroup := make(map[model.GroupID]*coverage)
	for _, groups := range man.Counts {
		for g, byStat := range groups {
			c := byGroup[g]
			if c == nil {
				c = &coverage{stats: make(map[string]bool)}
				byGroup[g] = c
			}
			for id, cell := range byStat {
				c.stats[id] = true
				c.opps += cell.Opportunities
				c.atts += cell.Attempts
			}
		}
	}
	if len(byGroup) == 0 {
		return
	}
	fmt.Fprintln(w)
	cov := newTable(w)
	cov.Header("GROUP", "STATS", "OPP", "ATT")
	for _, g := range man.Groups() {
		c := byGroup[g]
		cov.Append(string(g), strconv.Itoa(len(c.stats)), strconv.Itoa(c.opps), strconv.Itoa(c.atts))
	}
	cov.Render()
}

// TrendTable renders one stat's counts across months (ascending) for one
// group, with the percentage delta against the previous month. Returns the
// number of rows shown.
func TrendTable(w io.Writer, man *model.Manifest, statID string, group model.GroupID) int {
	type row struct {
		month string
		cell  model.StatCell
	}
	var rows []row
	for _, m := range man.Months() {
		if cell, ok := man.Cell(m, group, statID); ok {
			rows = append(rows, row{m, cell})
		}
	}
	if len(rows) == 0 {
		return 0
	}

	fmt.Fprintf(w, "\n%s / %s\n", statID, group)
	table := newTable(w)
	table.Header("MONTH", "OPP", "ATT", "PCT", "DELTA")
	for i, r := range rows {
		delta := "—"
		if i > 0 {
			d := r.cell.Percentage - rows[i-1].cell.Percentage
			delta = fmt.Sprintf("%+.*f", man.Metric.Decimals, d)
		}
		table.Append(
			r.month,
			strconv.Itoa(r.cell.Opportunities),
			strconv.Itoa(r.cell.Attempts),
			formatPct(r.cell.Percentage, man.Metric.Decimals)+"%",
			delta,
		)
	}
	table.Render()
	return len(rows)
}

// ScoreTables renders the whole scorecard: stat level, subgroup level, group
// level and the overall line.
func ScoreTables(w io.Writer, sc *model.Scorecard) {
	stats := newTable(w)
	stats.Header("STAT", "GROUP", "PCT_TD", "SCORE_TD", "MONTHS", "GRADE", "NOTE")
	for _, id := range sc.StatIDs() {
		for _, g := range sortedGroupKeys(sc.StatLevel[id]) {
			rec := sc.StatLevel[id][g]
			note := rec.Note
			if note == "" {
				note = "—"
			}
			stats.Append(
				id,
				string(g),
				formatScore(rec.PctTimeDecay),
				formatScore(rec.ScoreTimeDecay),
				strconv.Itoa(rec.MonthsUsed),
				rec.Grade,
				note,
			)
		}
	}
	stats.Render()

	if len(sc.SubgroupLevel) > 0 {
		fmt.Fprintln(w)
		subs := newTable(w)
		subs.Header("SUBGROUP", "GROUP", "SCORE")
		for _, name := range sc.Subgroups() {
			for _, g := range sortedGroupKeys(sc.SubgroupLevel[name]) {
				subs.Append(name, string(g), formatScore(sc.SubgroupLevel[name][g]))
			}
		}
		subs.Render()
	}

	if len(sc.GroupLevel) > 0 {
		fmt.Fprintln(w)
		groups := newTable(w)
		groups.Header("GROUP", "SCORE", "RATING")
		for _, g := range sortedGroupKeys(sc.GroupLevel) {
			v := sc.GroupLevel[g]
			groups.Append(string(g), formatScore(v), score.ScoreLabel(v))
		}
		groups.Render()
	}

	overall := "—"
	if sc.Overall != nil {
		overall = formatScore(*sc.Overall)
	}
	fmt.Fprintf(w, "\nOverall: %s (%s)\n", overall, score.OverallLabel(sc.Overall))
}

// CatalogTable lists the compiled stat definitions.
func CatalogTable(w io.Writer, cat *catalog.Catalog) {
	table := newTable(w)
	table.Header("ID", "LABEL", "FAMILY", "SCOPE", "GROUPS")
	for i := range cat.Stats {
		s := &cat.Stats[i]
		groups := make([]string, len(s.AppliesToGroups))
		for j, g := range s.AppliesToGroups {
			groups[j] = string(g)
		}
		family := s.Family
		if family == "" {
			family = "—"
		}
		table.Append(s.ID, s.Label, family, s.Scope, strings.Join(groups, ", "))
	}
	table.Render()
}

func monthsOf(m map[string]map[model.GroupID]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedGroupKeys[V any](m map[model.GroupID]V) []model.GroupID {
	out := make([]model.GroupID, 0, len(m))
	for g := range m {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
