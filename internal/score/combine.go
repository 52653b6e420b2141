package score

import "github.com/mgonc/go-poker-metrics/internal/model"

// CombineNonKO merges the two non-KO size groups for one month and stat.
// Counts are summed and the percentage recomputed from the sums; averaging
// the two percentages would let a tiny size group swing the merged value.
// ok is false when neither group has the stat that month.
func CombineNonKO(man *model.Manifest, month, statID string) (opportunities, attempts int, pct float64, ok bool) {
	if c, found := man.Cell(month, model.GroupNonKO9Max, statID); found {
		opportunities += c.Opportunities
		attempts += c.Attempts
		ok = true
	}
	if c, found := man.Cell(month, model.GroupNonKO6Max, statID); found {
		opportunities += c.Opportunities
		attempts += c.Attempts
		ok = true
	}
	if opportunities > 0 {
		pct = float64(attempts) / float64(opportunities) * 100.0
	}
	return opportunities, attempts, pct, ok
}
