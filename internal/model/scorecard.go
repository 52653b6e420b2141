package model

import "sort"

// ---- Scorecard (scorecard.json) ----

// StatScore is one scored (stat, group) record. Percent and score are
// time-decayed over the most recent qualifying months, newest first.
type StatScore struct {
	PctTimeDecay   float64 `json:"pct_time_decay"`
	ScoreTimeDecay float64 `json:"score_time_decay"`
	MonthsUsed     int     `json:"months_used"`
	Grade          string  `json:"grade"`
	Note           string  `json:"note"`
}

// MinSample echoes the thresholds the scorecard was built with.
type MinSample struct {
	Total    int `json:"total"`
	PerMonth int `json:"per_month"`
}

// ScorecardInputs records which artifacts produced the scorecard.
type ScorecardInputs struct {
	StatCounts string `json:"stat_counts"`
	Config     string `json:"config"`
}

// ScorecardWeights echoes the rollup weights: per-stat within a subgroup,
// per-subgroup within a group, per-group within the overall.
type ScorecardWeights struct {
	Stats     map[string]float64  `json:"stats"`
	Subgroups map[string]float64  `json:"subgroups"`
	Groups    map[GroupID]float64 `json:"groups"`
}

// TimeDecay holds the weight profiles applied to 3, 2 and 1 available
// months, newest month first.
type TimeDecay struct {
	Weights3 []float64 `json:"weights_3" yaml:"weights_3"`
	Weights2 []float64 `json:"weights_2" yaml:"weights_2"`
	Weights1 []float64 `json:"weights_1" yaml:"weights_1"`
}

// Scorecard is the scoring artifact. Overall is nil when nothing scored.
type Scorecard struct {
	GeneratedAt    string                           `json:"generated_at"`
	RunID          string                           `json:"run_id"`
	Inputs         ScorecardInputs                  `json:"inputs"`
	Weights        ScorecardWeights                 `json:"weights"`
	TimeDecay      TimeDecay                        `json:"time_decay"`
	NonKOCombineBy string                           `json:"nonko_combine_by"`
	MinSample      MinSample                        `json:"min_sample"`
	StatLevel      map[string]map[GroupID]StatScore `json:"stat_level"`
	SubgroupLevel  map[string]map[GroupID]float64   `json:"subgroup_level"`
	GroupLevel     map[GroupID]float64              `json:"group_level"`
	Overall        *float64                         `json:"overall"`
}

// StatIDs returns the scored stat ids, sorted.
func (s *Scorecard) StatIDs() []string {
	out := make([]string, 0, len(s.StatLevel))
	for id := range s.StatLevel {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// StatScore looks up one scored (stat, group) record.
func (s *Scorecard) StatScore(statID string, group GroupID) (StatScore, bool) {
	byGroup, ok := s.StatLevel[statID]
	if !ok {
		return StatScore{}, false
	}
	rec, ok := byGroup[group]
	return rec, ok
}

// Subgroups returns the subgroup names present in the scorecard, sorted.
func (s *Scorecard) Subgroups() []string {
	out := make([]string, 0, len(s.SubgroupLevel))
	for name := range s.SubgroupLevel {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
