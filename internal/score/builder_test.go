package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgonc/go-poker-metrics/internal/config"
	"github.com/mgonc/go-poker-metrics/internal/model"
)

// newManifest returns an empty counts manifest.
func newManifest() *model.Manifest {
	return &model.Manifest{
		HandCounts: map[string]map[model.GroupID]int{},
		Counts:     map[string]map[model.GroupID]map[string]model.StatCell{},
	}
}

// addCell records one counter cell with its derived percentage.
func addCell(man *model.Manifest, month string, group model.GroupID, statID string, opp, att int) {
	if man.Counts[month] == nil {
		man.Counts[month] = map[model.GroupID]map[string]model.StatCell{}
	}
	if man.Counts[month][group] == nil {
		man.Counts[month][group] = map[string]model.StatCell{}
	}
	man.Counts[month][group][statID] = model.StatCell{
		Opportunities: opp,
		Attempts:      att,
		Percentage:    model.Percentage(att, opp, 2),
	}
}

// scoringConfig returns a config with one stat rolled into one subgroup and
// the combined group carrying all the weight.
func scoringConfig() *config.Config {
	cfg := config.Default()
	cfg.Ideals = map[string]map[string]float64{
		"vpip": {"nonko_combined": 25.0, "lo": 22.0, "hi": 28.0},
	}
	cfg.Subgroups = map[string][]string{"preflop_core": {"vpip"}}
	cfg.Weights = config.Weights{
		ValidateMode: config.ValidateAuto,
		Stats:        map[string]float64{"vpip": 1.0},
		Subgroups:    map[string]float64{"preflop_core": 1.0},
		Groups:       map[string]float64{"nonko_combined": 1.0},
	}
	return cfg
}

// ---- Combined group tests ----

// TestCombineNonKO_RecomputesFromSums: the merged percentage comes from
// summed counts, not averaged percentages.
func TestCombineNonKO_RecomputesFromSums(t *testing.T) {
	man := newManifest()
	addCell(man, "2025-07", model.GroupNonKO9Max, "vpip", 1000, 100)
	addCell(man, "2025-07", model.GroupNonKO6Max, "vpip", 10, 9)

	opp, att, pct, ok := CombineNonKO(man, "2025-07", "vpip")
	require.True(t, ok)
	assert.Equal(t, 1010, opp)
	assert.Equal(t, 109, att)
	assert.InDelta(t, 10.7921, pct, 0.0001, "a tiny size group must not drag the merge toward 50")
}

// TestCombineNonKO_SingleGroup: one populated size group is enough.
func TestCombineNonKO_SingleGroup(t *testing.T) {
	man := newManifest()
	addCell(man, "2025-07", model.GroupNonKO6Max, "vpip", 10, 9)

	opp, att, pct, ok := CombineNonKO(man, "2025-07", "vpip")
	require.True(t, ok)
	assert.Equal(t, 10, opp)
	assert.Equal(t, 9, att)
	assert.InDelta(t, 90.0, pct, 1e-9)
}

// TestCombineNonKO_NoCells: neither size group has the stat that month.
func TestCombineNonKO_NoCells(t *testing.T) {
	_, _, pct, ok := CombineNonKO(newManifest(), "2025-07", "vpip")
	assert.False(t, ok)
	assert.Zero(t, pct)
}

// ---- Scorecard build tests ----

// TestBuild_SingleMonthAtIdeal: one month exactly at the ideal scores 100
// through every rollup level.
func TestBuild_SingleMonthAtIdeal(t *testing.T) {
	man := newManifest()
	addCell(man, "2025-07", model.GroupNonKO9Max, "vpip", 100, 25)

	sc := Build(man, scoringConfig(), "out/stat_counts.json", "configs/score.yml")

	rec, ok := sc.StatScore("vpip", model.GroupNonKO9Max)
	require.True(t, ok, "9max entry missing")
	assert.Equal(t, 25.0, rec.PctTimeDecay)
	assert.Equal(t, 100.0, rec.ScoreTimeDecay)
	assert.Equal(t, 1, rec.MonthsUsed)
	assert.Equal(t, "A", rec.Grade)
	assert.Contains(t, rec.Note, "Dentro do ideal")

	comb, ok := sc.StatScore("vpip", model.GroupNonKOCombined)
	require.True(t, ok, "combined entry missing")
	assert.Equal(t, 100.0, comb.ScoreTimeDecay)

	_, ok = sc.StatScore("vpip", model.GroupNonKO6Max)
	assert.False(t, ok, "groups with no cells must be omitted")

	assert.Equal(t, 100.0, sc.SubgroupLevel["preflop_core"][model.GroupNonKOCombined])
	assert.Equal(t, 100.0, sc.GroupLevel[model.GroupNonKOCombined])
	require.NotNil(t, sc.Overall)
	assert.Equal(t, 100.0, *sc.Overall)

	assert.Equal(t, "out/stat_counts.json", sc.Inputs.StatCounts)
	assert.Equal(t, "configs/score.yml", sc.Inputs.Config)
}

// TestBuild_TimeDecayNewestFirst: four months keep the newest three, scored
// per month before decaying.
func TestBuild_TimeDecayNewestFirst(t *testing.T) {
	man := newManifest()
	addCell(man, "2025-01", model.GroupPKO, "vpip", 100, 10)
	addCell(man, "2025-02", model.GroupPKO, "vpip", 100, 20)
	addCell(man, "2025-03", model.GroupPKO, "vpip", 100, 30)
	addCell(man, "2025-04", model.GroupPKO, "vpip", 100, 40)

	sc := Build(man, scoringConfig(), "", "")

	rec, ok := sc.StatScore("vpip", model.GroupPKO)
	require.True(t, ok)
	assert.Equal(t, 3, rec.MonthsUsed, "the oldest month drops")
	assert.Equal(t, 33.0, rec.PctTimeDecay, "0.5*40 + 0.3*30 + 0.2*20")
	assert.Equal(t, 86.0, rec.ScoreTimeDecay, "0.5*80 + 0.3*100 + 0.2*80; months score before decaying")
	assert.Equal(t, "D", rec.Grade, "33 percent exceeds the 28 band by 5")
}

// TestBuild_MonthGateSkipsThinMonths: months under the per-month floor are
// not collected; a stat with only thin months disappears for that group.
func TestBuild_MonthGateSkipsThinMonths(t *testing.T) {
	man := newManifest()
	addCell(man, "2025-07", model.GroupPKO, "vpip", 30, 3)
	addCell(man, "2025-06", model.GroupPKO, "vpip", 60, 30)
	addCell(man, "2025-07", model.GroupMystery, "vpip", 30, 3)

	cfg := scoringConfig()
	cfg.Scoring.Default.MinOpportunitiesMonth = 50
	sc := Build(man, cfg, "", "")

	rec, ok := sc.StatScore("vpip", model.GroupPKO)
	require.True(t, ok)
	assert.Equal(t, 1, rec.MonthsUsed, "the thin newest month must not count")
	assert.Equal(t, 50.0, rec.PctTimeDecay)

	_, ok = sc.StatScore("vpip", model.GroupMystery)
	assert.False(t, ok, "a stat with only thin months is omitted")
}

// TestBuild_TotalGateDropsFromRollups: a stat under the total floor keeps
// its stat-level record but carries no weight upward.
func TestBuild_TotalGateDropsFromRollups(t *testing.T) {
	man := newManifest()
	addCell(man, "2025-07", model.GroupNonKO9Max, "vpip", 100, 25)

	cfg := scoringConfig()
	cfg.Scoring.Default.MinOpportunitiesTotal = 1000
	sc := Build(man, cfg, "", "")

	_, ok := sc.StatScore("vpip", model.GroupNonKO9Max)
	assert.True(t, ok, "the stat level keeps the record")
	assert.Empty(t, sc.SubgroupLevel)
	assert.Empty(t, sc.GroupLevel)
	assert.Nil(t, sc.Overall)
}

// TestBuild_GroupIdealBeatsFallback: a group-specific ideal wins over the
// combined one.
func TestBuild_GroupIdealBeatsFallback(t *testing.T) {
	man := newManifest()
	addCell(man, "2025-07", model.GroupNonKO9Max, "vpip", 100, 20)

	cfg := scoringConfig()
	cfg.Ideals["vpip"][string(model.GroupNonKO9Max)] = 20.0
	sc := Build(man, cfg, "", "")

	rec, ok := sc.StatScore("vpip", model.GroupNonKO9Max)
	require.True(t, ok)
	assert.Equal(t, 100.0, rec.ScoreTimeDecay, "the 9max ideal of 20 must beat the combined 25")
}

// TestBuild_CombinedIdealFallsBackTo9Max: the combined group borrows the
// 9max ideal when it has none of its own.
func TestBuild_CombinedIdealFallsBackTo9Max(t *testing.T) {
	man := newManifest()
	addCell(man, "2025-07", model.GroupNonKO9Max, "vpip", 100, 20)

	cfg := scoringConfig()
	cfg.Ideals = map[string]map[string]float64{
		"vpip": {string(model.GroupNonKO9Max): 20.0},
	}
	sc := Build(man, cfg, "", "")

	comb, ok := sc.StatScore("vpip", model.GroupNonKOCombined)
	require.True(t, ok)
	assert.Equal(t, 100.0, comb.ScoreTimeDecay)
	assert.Equal(t, "-", comb.Grade, "no band configured")
	assert.Empty(t, comb.Note)
}

// TestBuild_EmptyManifest: nothing scored means an empty card and a nil
// overall.
func TestBuild_EmptyManifest(t *testing.T) {
	sc := Build(newManifest(), scoringConfig(), "", "")
	assert.Empty(t, sc.StatLevel)
	assert.Empty(t, sc.SubgroupLevel)
	assert.Nil(t, sc.Overall)
	assert.Equal(t, "Sem amostra", OverallLabel(sc.Overall))
}
