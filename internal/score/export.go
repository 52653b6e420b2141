package score

import (
	"sort"
	"strconv"

	"github.com/mgonc/go-poker-metrics/internal/model"
)

// CSV headers for the scorecard export artifacts.
var (
	StatLevelHeader     = []string{"stat_id", "group", "pct_time_decay", "score_time_decay", "months_used"}
	SubgroupLevelHeader = []string{"subgroup", "group", "score"}
	GroupLevelHeader    = []string{"group", "score"}
)

// StatLevelRows flattens stat_level into CSV rows, sorted by stat then
// group for stable diffs.
func StatLevelRows(sc *model.Scorecard) [][]string {
	var rows [][]string
	for _, sid := range sc.StatIDs() {
		for _, group := range sortedGroups(sc.StatLevel[sid]) {
			rec := sc.StatLevel[sid][group]
			rows = append(rows, []string{
				sid,
				string(group),
				formatScore(rec.PctTimeDecay),
				formatScore(rec.ScoreTimeDecay),
				strconv.Itoa(rec.MonthsUsed),
			})
		}
	}
	return rows
}

// SubgroupLevelRows flattens subgroup_level, sorted by subgroup then group.
func SubgroupLevelRows(sc *model.Scorecard) [][]string {
	var rows [][]string
	for _, name := range sc.Subgroups() {
		for _, group := range sortedGroups(sc.SubgroupLevel[name]) {
			rows = append(rows, []string{name, string(group), formatScore(sc.SubgroupLevel[name][group])})
		}
	}
	return rows
}

// GroupLevelRows flattens group_level, sorted by group.
func GroupLevelRows(sc *model.Scorecard) [][]string {
	var rows [][]string
	for _, group := range sortedGroups(sc.GroupLevel) {
		rows = append(rows, []string{string(group), formatScore(sc.GroupLevel[group])})
	}
	return rows
}

// OverallText renders the overall score for overall.txt; empty when no
// group scored.
func OverallText(sc *model.Scorecard) string {
	if sc.Overall == nil {
		return ""
	}
	return formatScore(*sc.Overall)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func sortedGroups[V any](m map[model.GroupID]V) []model.GroupID {
	out := make([]model.GroupID, 0, len(m))
	for g := range m {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
