package catalog

import (
	"slices"

	"github.com/mgonc/go-poker-metrics/internal/parser"
)

// FilterSet is a stat's pre-condition gate, checked before the opportunity
// clause and independent of the clause tree.
type FilterSet struct {
	HeadsUpOnly         bool     `yaml:"heads_up_only"`
	PotType             []string `yaml:"pot_type"`
	EffStackMinBB       *float64 `yaml:"eff_stack_min_bb"`
	ExcludeAllinPreflop bool     `yaml:"exclude_allin_preflop"`
}

// Pass reports whether the hand clears the gate.
//
// heads_up_only gates on the first contested street for postflop stats (a
// hand that never saw a flop passes, a multiway flop does not) and on the
// flop flag directly for preflop stats. pot_type and eff_stack_min_bb fail
// when their context field is missing.
func (f *FilterSet) Pass(scope string, ctx parser.Context) bool {
	if f.HeadsUpOnly {
		if scope == ScopePostflop {
			if parser.Truthy(ctx["saw_flop"]) && !parser.Truthy(ctx["heads_up_flop"]) {
				return false
			}
		} else if !parser.Truthy(ctx["heads_up_flop"]) {
			return false
		}
	}

	if len(f.PotType) > 0 {
		pot, _ := ctx["pot_type"].(string)
		if !slices.Contains(f.PotType, pot) {
			return false
		}
	}

	if f.EffStackMinBB != nil {
		eff, ok := numeric(ctx["eff_stack_srp"])
		if !ok || eff < *f.EffStackMinBB {
			return false
		}
	}

	if f.ExcludeAllinPreflop && parser.Truthy(ctx["any_allin_preflop"]) {
		return false
	}
	return true
}
