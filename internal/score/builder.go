package score

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mgonc/go-poker-metrics/internal/config"
	"github.com/mgonc/go-poker-metrics/internal/model"
)

// statGroups are the real groups scored directly from manifest cells, in
// rollup order. The virtual combined group is scored separately.
var statGroups = []model.GroupID{
	model.GroupNonKO9Max,
	model.GroupNonKO6Max,
	model.GroupPKO,
	model.GroupMystery,
	model.GroupPostflopAll,
}

// rollupGroups are the group columns of the subgroup rollup.
var rollupGroups = []model.GroupID{
	model.GroupNonKOCombined,
	model.GroupNonKO9Max,
	model.GroupNonKO6Max,
	model.GroupPKO,
	model.GroupMystery,
	model.GroupPostflopAll,
}

// monthSample is one qualifying month's percentage and sample size,
// collected newest first.
type monthSample struct {
	pct float64
	opp int
}

// Build assembles a scorecard from an aggregation manifest and a scoring
// config. countsPath and cfgPath are echoed verbatim into the output.
//
// A stat/group pair with no qualifying months is omitted entirely. The same
// holds at every rollup level: a missing entry never contributes a zero,
// and its weight drops out of the denominator.
func Build(man *model.Manifest, cfg *config.Config, countsPath, cfgPath string) *model.Scorecard {
	months := man.MonthsDesc()
	scorer := PickScorer(cfg.Scoring.Mode)
	minMonth := cfg.Scoring.Default.MinOpportunitiesMonth
	minTotal := cfg.Scoring.Default.MinOpportunitiesTotal
	if cfg.NonKOCombine.By == config.CombineByHands {
		slog.Debug("nonko_combine.by=hands weighs by opportunities until hand counts are joined in")
	}

	statLevel := make(map[string]map[model.GroupID]model.StatScore)
	// usedOpps backs the subgroup-level sample gate; it is not serialized.
	usedOpps := make(map[string]map[model.GroupID]int)

	record := func(statID string, group model.GroupID, samples []monthSample, ideal func(monthSample) float64) {
		if len(samples) == 0 {
			return
		}
		params := stepParams(cfg.StepFor(statID))
		weights := WeightsForN(len(samples), cfg.TimeDecay)
		pcts := make([]Pair, len(samples))
		scores := make([]Pair, len(samples))
		total := 0
		for i, s := range samples {
			pcts[i] = Pair{Value: s.pct, Usable: true}
			scores[i] = Pair{Value: scorer(s.pct, ideal(s), params), Usable: true}
			total += s.opp
		}
		pctTD := ApplyTimeDecay(pcts, weights)
		scoreTD := ApplyTimeDecay(scores, weights)

		rec := model.StatScore{
			PctTimeDecay:   model.RoundTo(pctTD, 2),
			ScoreTimeDecay: model.RoundTo(scoreTD, 2),
			MonthsUsed:     len(samples),
		}
		rec.Grade, rec.Note = ExplainStat(cfg, statID, pctTD)

		if statLevel[statID] == nil {
			statLevel[statID] = make(map[model.GroupID]model.StatScore)
			usedOpps[statID] = make(map[model.GroupID]int)
		}
		statLevel[statID][group] = rec
		usedOpps[statID][group] = total
	}

	for statID := range cfg.Ideals {
		for _, group := range statGroups {
			samples := collectMonths(months, minMonth, func(m string) (monthSample, bool) {
				cell, ok := man.Cell(m, group, statID)
				if !ok {
					return monthSample{}, false
				}
				return monthSample{pct: cell.Percentage, opp: cell.Opportunities}, true
			})
			record(statID, group, samples, func(s monthSample) float64 {
				if v, ok := cfg.IdealFor(statID, group); ok {
					return v
				}
				if v, ok := cfg.IdealFor(statID, model.GroupNonKOCombined); ok {
					return v
				}
				return s.pct
			})
		}

		samples := collectMonths(months, minMonth, func(m string) (monthSample, bool) {
			opp, _, pct, ok := CombineNonKO(man, m, statID)
			if !ok || opp == 0 {
				return monthSample{}, false
			}
			return monthSample{pct: pct, opp: opp}, true
		})
		record(statID, model.GroupNonKOCombined, samples, func(s monthSample) float64 {
			if v, ok := cfg.IdealFor(statID, model.GroupNonKOCombined); ok {
				return v
			}
			if v, ok := cfg.IdealFor(statID, model.GroupNonKO9Max); ok {
				return v
			}
			return s.pct
		})
	}

	subgroupLevel := make(map[string]map[model.GroupID]float64)
	for name, members := range cfg.Subgroups {
		for _, group := range rollupGroups {
			var sum, mass float64
			for _, sid := range members {
				rec, ok := statLevel[sid][group]
				if !ok {
					continue
				}
				w := cfg.Weights.Stats[sid]
				if w <= 0 {
					continue
				}
				if usedOpps[sid][group] < minTotal {
					continue
				}
				sum += rec.ScoreTimeDecay * w
				mass += w
			}
			if mass > 0 {
				if subgroupLevel[name] == nil {
					subgroupLevel[name] = make(map[model.GroupID]float64)
				}
				subgroupLevel[name][group] = model.RoundTo(sum/mass, 2)
			}
		}
	}

	groupLevel := make(map[model.GroupID]float64)
	for name := range cfg.Weights.Groups {
		group := model.GroupID(name)
		var sum, mass float64
		for sg, w := range cfg.Weights.Subgroups {
			if w <= 0 {
				continue
			}
			s, ok := subgroupLevel[sg][group]
			if !ok {
				continue
			}
			sum += s * w
			mass += w
		}
		if mass > 0 {
			groupLevel[group] = model.RoundTo(sum/mass, 2)
		}
	}

	var overall *float64
	{
		var sum, mass float64
		for name, w := range cfg.Weights.Groups {
			if w <= 0 {
				continue
			}
			s, ok := groupLevel[model.GroupID(name)]
			if !ok {
				continue
			}
			sum += s * w
			mass += w
		}
		if mass > 0 {
			v := model.RoundTo(sum/mass, 2)
			overall = &v
		}
	}

	return &model.Scorecard{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		RunID:       uuid.NewString(),
		Inputs:      model.ScorecardInputs{StatCounts: countsPath, Config: cfgPath},
		Weights: model.ScorecardWeights{
			Stats:     cfg.Weights.Stats,
			Subgroups: cfg.Weights.Subgroups,
			Groups:    cfg.GroupWeights(),
		},
		TimeDecay:      cfg.TimeDecay,
		NonKOCombineBy: cfg.NonKOCombine.By,
		MinSample:      model.MinSample{Total: minTotal, PerMonth: minMonth},
		StatLevel:      statLevel,
		SubgroupLevel:  subgroupLevel,
		GroupLevel:     groupLevel,
		Overall:        overall,
	}
}

// collectMonths walks months newest first and keeps up to three samples
// that clear the per-month opportunity gate.
func collectMonths(months []string, minMonth int, lookup func(month string) (monthSample, bool)) []monthSample {
	var out []monthSample
	for _, m := range months {
		s, ok := lookup(m)
		if !ok {
			continue
		}
		if s.opp < minMonth {
			continue
		}
		out = append(out, s)
		if len(out) == 3 {
			break
		}
	}
	return out
}

func stepParams(d config.ScoringDefaults) StepParams {
	return StepParams{
		StepDownPct:       d.StepDownPct,
		StepUpPct:         d.StepUpPct,
		PointsPerStepDown: d.PointsPerStepDown,
		PointsPerStepUp:   d.PointsPerStepUp,
	}
}
