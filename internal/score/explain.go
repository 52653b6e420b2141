package score

import (
	"fmt"

	"github.com/mgonc/go-poker-metrics/internal/config"
	"github.com/mgonc/go-poker-metrics/internal/model"
)

// Verdict labels are user-facing and stay in Portuguese.
const labelNoSample = "Sem amostra"

// ScoreLabel renders a score as the product's verdict ladder.
func ScoreLabel(score float64) string {
	switch {
	case score >= 90:
		return "Excelente"
	case score >= 75:
		return "Bom"
	case score >= 60:
		return "OK"
	case score >= 40:
		return "A ajustar"
	}
	return "Crítico"
}

// OverallLabel is ScoreLabel for the nullable overall score.
func OverallLabel(score *float64) string {
	if score == nil {
		return labelNoSample
	}
	return ScoreLabel(*score)
}

// ExplainStat grades a decayed percentage against the stat's configured
// lo/hi band. Stats without a band get a dash and no note. The shortfall or
// excess in percentage points picks between the C and D grades.
func ExplainStat(cfg *config.Config, statID string, pct float64) (grade, note string) {
	lo, hi, ok := cfg.IdealBand(statID)
	if !ok {
		return "-", ""
	}
	switch {
	case pct < lo:
		d := model.RoundTo(lo-pct, 2)
		return deltaGrade(d), fmt.Sprintf("Abaixo do ideal (%.2f–%.2f); falta %.2f pp.", lo, hi, d)
	case pct > hi:
		d := model.RoundTo(pct-hi, 2)
		return deltaGrade(d), fmt.Sprintf("Acima do ideal (%.2f–%.2f); excede %.2f pp.", lo, hi, d)
	}
	return "A", fmt.Sprintf("Dentro do ideal (%.2f–%.2f).", lo, hi)
}

func deltaGrade(d float64) string {
	if d < 3 {
		return "C"
	}
	return "D"
}
