package model

import (
	"fmt"
	"math"
	"sort"
)

// GroupID identifies an analysis group a hand can belong to. Preflop groups
// partition hands by tournament format and table size; postflop_all cuts
// across formats and holds every hand with postflop action. nonko_combined
// is virtual: it never appears in counts, only in scoring output, where it
// merges the two non-KO size groups.
type GroupID string

const (
	GroupNonKO9Max     GroupID = "nonko_9max"
	GroupNonKO6Max     GroupID = "nonko_6max"
	GroupPKO           GroupID = "pko"
	GroupMystery       GroupID = "mystery"
	GroupPostflopAll   GroupID = "postflop_all"
	GroupNonKOCombined GroupID = "nonko_combined"
)

// CountGroups are the groups that can appear in a manifest, i.e. everything
// except the virtual combined group.
var CountGroups = []GroupID{
	GroupNonKO9Max,
	GroupNonKO6Max,
	GroupPKO,
	GroupMystery,
	GroupPostflopAll,
}

func (g GroupID) Valid() bool {
	switch g {
	case GroupNonKO9Max, GroupNonKO6Max, GroupPKO, GroupMystery, GroupPostflopAll, GroupNonKOCombined:
		return true
	}
	return false
}

// ParseGroupID validates a user- or catalog-supplied group name.
func ParseGroupID(s string) (GroupID, error) {
	g := GroupID(s)
	if !g.Valid() {
		return "", fmt.Errorf("unknown group %q", s)
	}
	return g, nil
}

// ---- Manifest (stat_counts.json) ----

// Metric describes how raw counts become a reported value. Only percent is
// supported; decimals controls artifact rounding.
type Metric struct {
	Type     string `json:"type"`
	Decimals int    `json:"decimals"`
}

func DefaultMetric() Metric { return Metric{Type: "percent", Decimals: 2} }

// IndexPair holds the provenance file paths for one (month, group, stat)
// cell, relative to the artifact directory.
type IndexPair struct {
	Opps     string `json:"opps"`
	Attempts string `json:"attempts"`
}

// StatCell is one aggregated counter cell. Percentage is always derived from
// the two integers, never stored independently of them.
type StatCell struct {
	Opportunities int       `json:"opportunities"`
	Attempts      int       `json:"attempts"`
	Percentage    float64   `json:"percentage"`
	IndexFiles    IndexPair `json:"index_files"`
}

// LineError records a single recovered input failure. Line is 1-based.
type LineError struct {
	Line    int    `json:"line"`
	Message string `json:"error"`
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Manifest is the aggregation artifact written as stat_counts.json.
// Counts is keyed month -> group -> stat id; HandCounts tracks how many
// hands landed in each group per month regardless of stat applicability.
type Manifest struct {
	GeneratedAt    string                                     `json:"generated_at"`
	RunID          string                                     `json:"run_id"`
	Input          string                                     `json:"input"`
	Catalog        string                                     `json:"catalog"`
	Metric         Metric                                     `json:"metric"`
	HandsProcessed int                                        `json:"hands_processed"`
	Errors         int                                        `json:"errors"`
	StatsComputed  int                                        `json:"stats_computed"`
	HandCounts     map[string]map[GroupID]int                 `json:"hand_counts"`
	Counts         map[string]map[GroupID]map[string]StatCell `json:"counts"`
}

// Months returns the manifest's month buckets in ascending (chronological)
// order. Month strings sort lexicographically in time order.
func (m *Manifest) Months() []string {
	out := make([]string, 0, len(m.Counts))
	for k := range m.Counts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MonthsDesc returns month buckets newest first.
func (m *Manifest) MonthsDesc() []string {
	out := m.Months()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Cell looks up one counter cell.
func (m *Manifest) Cell(month string, group GroupID, statID string) (StatCell, bool) {
	byGroup, ok := m.Counts[month]
	if !ok {
		return StatCell{}, false
	}
	byStat, ok := byGroup[group]
	if !ok {
		return StatCell{}, false
	}
	cell, ok := byStat[statID]
	return cell, ok
}

// Groups returns every group present in any month, sorted by name.
func (m *Manifest) Groups() []GroupID {
	seen := map[GroupID]bool{}
	for _, byGroup := range m.Counts {
		for g := range byGroup {
			seen[g] = true
		}
	}
	out := make([]GroupID, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StatIDs returns every stat id present in any cell, sorted.
func (m *Manifest) StatIDs() []string {
	seen := map[string]bool{}
	for _, byGroup := range m.Counts {
		for _, byStat := range byGroup {
			for id := range byStat {
				seen[id] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RunSummary is what the run command reports after a completed aggregation.
type RunSummary struct {
	OutputPath      string
	IndexDir        string
	HandsProcessed  int
	StatsComputed   int
	ErrorCount      int
	MonthsGenerated int
	Stats           []string
}

// ---- Shared numeric helpers ----

// RoundTo rounds half away from zero to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Percentage converts an attempt/opportunity pair to a rounded percentage.
// Zero opportunities yield exactly 0, never NaN.
func Percentage(attempts, opportunities, decimals int) float64 {
	if opportunities == 0 {
		return 0
	}
	return RoundTo(float64(attempts)/float64(opportunities)*100, decimals)
}
