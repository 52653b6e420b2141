package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgonc/go-poker-metrics/internal/model"
)

// exportFixture builds a small scored card by hand.
func exportFixture() *model.Scorecard {
	overall := 81.25
	return &model.Scorecard{
		StatLevel: map[string]map[model.GroupID]model.StatScore{
			"vpip": {
				model.GroupPKO:           {PctTimeDecay: 24.5, ScoreTimeDecay: 92.31, MonthsUsed: 3},
				model.GroupNonKOCombined: {PctTimeDecay: 26, ScoreTimeDecay: 88.4, MonthsUsed: 2},
			},
			"cbet_flop": {
				model.GroupPostflopAll: {PctTimeDecay: 61.33, ScoreTimeDecay: 70, MonthsUsed: 1},
			},
		},
		SubgroupLevel: map[string]map[model.GroupID]float64{
			"preflop_core": {model.GroupPKO: 92.31},
		},
		GroupLevel: map[model.GroupID]float64{model.GroupPKO: 92.31},
		Overall:    &overall,
	}
}

// ---- Export tests ----

// TestStatLevelRows_SortedAndFormatted: rows come out sorted by stat then
// group, with two-decimal values.
func TestStatLevelRows_SortedAndFormatted(t *testing.T) {
	rows := StatLevelRows(exportFixture())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"cbet_flop", "postflop_all", "61.33", "70.00", "1"}, rows[0])
	assert.Equal(t, []string{"vpip", "nonko_combined", "26.00", "88.40", "2"}, rows[1])
	assert.Equal(t, []string{"vpip", "pko", "24.50", "92.31", "3"}, rows[2])
}

// TestRollupRows: subgroup and group artifacts mirror their maps.
func TestRollupRows(t *testing.T) {
	sc := exportFixture()
	assert.Equal(t, [][]string{{"preflop_core", "pko", "92.31"}}, SubgroupLevelRows(sc))
	assert.Equal(t, [][]string{{"pko", "92.31"}}, GroupLevelRows(sc))
}

// TestOverallText: two decimals when present, empty when nothing scored.
func TestOverallText(t *testing.T) {
	sc := exportFixture()
	assert.Equal(t, "81.25", OverallText(sc))

	sc.Overall = nil
	assert.Empty(t, OverallText(sc))
}

// ---- Verdict label tests ----

// TestScoreLabel_Ladder: the verdict thresholds, inclusive at each floor.
func TestScoreLabel_Ladder(t *testing.T) {
	assert.Equal(t, "Excelente", ScoreLabel(95))
	assert.Equal(t, "Excelente", ScoreLabel(90))
	assert.Equal(t, "Bom", ScoreLabel(89.99))
	assert.Equal(t, "Bom", ScoreLabel(75))
	assert.Equal(t, "OK", ScoreLabel(60))
	assert.Equal(t, "A ajustar", ScoreLabel(40))
	assert.Equal(t, "Crítico", ScoreLabel(39.99))
	assert.Equal(t, "Crítico", ScoreLabel(0))
}

// TestOverallLabel: nil reads as no sample.
func TestOverallLabel(t *testing.T) {
	assert.Equal(t, "Sem amostra", OverallLabel(nil))
	v := 76.0
	assert.Equal(t, "Bom", OverallLabel(&v))
}

// ---- Grading note tests ----

// TestExplainStat_Bands: the note names the band and the distance, and the
// distance picks the grade.
func TestExplainStat_Bands(t *testing.T) {
	cfg := scoringConfig()

	grade, note := ExplainStat(cfg, "vpip", 20.0)
	assert.Equal(t, "C", grade, "2 points short stays a C")
	assert.Contains(t, note, "Abaixo do ideal (22.00–28.00)")
	assert.Contains(t, note, "falta 2.00 pp.")

	grade, _ = ExplainStat(cfg, "vpip", 15.0)
	assert.Equal(t, "D", grade, "7 points short is a D")

	grade, note = ExplainStat(cfg, "vpip", 30.0)
	assert.Equal(t, "C", grade)
	assert.Contains(t, note, "excede 2.00 pp.")

	grade, note = ExplainStat(cfg, "vpip", 25.0)
	assert.Equal(t, "A", grade)
	assert.Contains(t, note, "Dentro do ideal (22.00–28.00).")
}

// TestExplainStat_NoBand: stats without lo/hi get a dash and no note.
func TestExplainStat_NoBand(t *testing.T) {
	cfg := scoringConfig()
	cfg.Ideals["fold_bb"] = map[string]float64{"nonko_combined": 60.0}

	grade, note := ExplainStat(cfg, "fold_bb", 55.0)
	assert.Equal(t, "-", grade)
	assert.Empty(t, note)

	grade, _ = ExplainStat(cfg, "unknown_stat", 55.0)
	assert.Equal(t, "-", grade)
}
