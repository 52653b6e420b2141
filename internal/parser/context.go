package parser

import (
	"log/slog"

	"github.com/mgonc/go-poker-metrics/internal/model"
)

// Context is the flat field table catalog clauses evaluate against.
// Every documented field below is always present, with its section default
// when the record lacks it; names outside the documented set flatten through
// from the enrichment sections as-is. Only a name that is neither documented
// nor present in the record is genuinely absent, which is what the missing
// field rules of the clause evaluator key on.
type Context map[string]any

// Documented boolean fields, by source section. Absent ones default false.
var preflopBools = []string{
	"unopened_pot",
	"hero_raised_first_in",
	"hero_vpip",
	"faced_3bet",
	"folded_to_3bet",
	"is_squeeze",
	"is_resteal_vs_btn",
}

var postflopBools = []string{
	// ---- street visibility ----
	"saw_flop", "saw_turn", "saw_river",

	// ---- cbet ----
	"cbet_flop_opp_ip", "cbet_flop_att_ip", "cbet_flop_opp_oop", "cbet_flop_att_oop",
	"cbet_turn_opp_ip", "cbet_turn_att_ip", "cbet_turn_opp_oop", "cbet_turn_att_oop",
	"cbet_river_opp_ip", "cbet_river_att_ip", "cbet_river_opp_oop", "cbet_river_att_oop",

	// ---- facing a cbet ----
	"vs_cbet_flop_fold_ip", "vs_cbet_flop_call_ip", "vs_cbet_flop_raise_ip",
	"vs_cbet_flop_fold_oop", "vs_cbet_flop_call_oop", "vs_cbet_flop_raise_oop",
	"vs_cbet_turn_fold_ip", "vs_cbet_turn_call_ip", "vs_cbet_turn_raise_ip",
	"vs_cbet_turn_fold_oop", "vs_cbet_turn_call_oop", "vs_cbet_turn_raise_oop",
	"vs_cbet_river_fold_ip", "vs_cbet_river_call_ip", "vs_cbet_river_raise_ip",
	"vs_cbet_river_fold_oop", "vs_cbet_river_call_oop", "vs_cbet_river_raise_oop",

	// ---- probe betting ----
	"probe_flop_opp_ip", "probe_flop_att_ip", "probe_flop_opp_oop", "probe_flop_att_oop",
	"probe_turn_opp_ip", "probe_turn_att_ip", "probe_turn_opp_oop", "probe_turn_att_oop",
	"probe_river_opp_ip", "probe_river_att_ip", "probe_river_opp_oop", "probe_river_att_oop",

	// ---- delayed cbet ----
	"delayed_cbet_turn_opp_ip", "delayed_cbet_turn_att_ip",
	"delayed_cbet_turn_opp_oop", "delayed_cbet_turn_att_oop",
	"delayed_cbet_river_opp_ip", "delayed_cbet_river_att_ip",
	"delayed_cbet_river_opp_oop", "delayed_cbet_river_att_oop",

	// ---- donk betting ----
	"donk_flop", "donk_flop_opp", "donk_flop_att",
	"donk_turn", "donk_turn_opp", "donk_turn_att",
	"donk_river_opp", "donk_river_att",

	// ---- check-raise ----
	"xr_flop_opp", "xr_flop_att",
	"xr_turn_opp", "xr_turn_att",
	"xr_river_opp", "xr_river_att",

	// ---- betting when the cbet went missing ----
	"flop_bet_vs_missed_cbet_srp", "turn_bet_vs_missed_cbet_srp_oop",
	"bet_vs_missed_flop_opp_ip", "bet_vs_missed_flop_att_ip",
	"bet_vs_missed_flop_opp_oop", "bet_vs_missed_flop_att_oop",
	"bet_vs_missed_turn_opp_ip", "bet_vs_missed_turn_att_ip",
	"bet_vs_missed_turn_opp_oop", "bet_vs_missed_turn_att_oop",
	"bet_vs_missed_river_opp_ip", "bet_vs_missed_river_att_ip",
	"bet_vs_missed_river_opp_oop", "bet_vs_missed_river_att_oop",

	// ---- showdown ----
	"saw_showdown", "won_showdown", "won_when_saw_flop",
	"wtsd", "w_sd", "w_wsf",

	// ---- misc postflop lines ----
	"fold_vs_check_raise_opp", "fold_vs_check_raise_att",
	"river_bet_srp_opp", "river_bet_srp_att",
	"w_sd_b_river_opp", "w_sd_b_river_att",
}

// Documented nullable fields. Absent ones are present in the context as nil,
// which comparison operators treat as "does not satisfy".
var preflopNullables = []string{"open_raiser", "three_bettor"}

var postflopNullables = []string{"pfr_player", "agg_pct_flop", "agg_pct_turn", "agg_pct_river"}

var stackNullables = []string{
	"hero_stack_bb",
	"avg_stacks_after_hero_bb",
	"raiser_stack_bb",
	"three_bettor_stack_bb",
	"squeeze_avg_stack_bb",
	"bvb_villain_stack_bb",
}

// Effective-stack fields are renamed on the way in.
var stackRenames = [][2]string{
	{"eff_stack_srp", "eff_stack_bb_srp"},
	{"eff_stack_vs_3bet", "eff_stack_bb_vs_3bettor"},
}

var playerCountFields = []string{"players_to_flop", "players_to_turn", "players_to_river"}

var streetFlagFields = []string{"flop", "turn", "river"}

// Truthy reports loose truthiness for a context value: nil and zero values
// are false, non-empty aggregates are true. Unknown types are false
// (fail closed) and logged once per occurrence.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case []any:
		return len(x) > 0
	case []string:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		slog.Warn("context value of unexpected type treated as false", "type", typeName(v))
		return false
	}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case bool, string, float64, int, int64:
		return "scalar"
	}
	return "composite"
}

// BuildContext flattens a record into the evaluation context. month and
// groups come from the classifier, hid from HandKey. Pure function, no I/O.
func BuildContext(rec *Record, hid, month string, groups []model.GroupID) Context {
	pre := rec.Derived.Preflop
	ip := rec.Derived.IP
	stacks := rec.Derived.Stacks
	flags := rec.Derived.Flags
	post := rec.Derived.Postflop

	ctx := make(Context, 192)

	// Generic flatten first. The documented pass below overrides collisions,
	// so section order only matters for undocumented duplicate names.
	for _, sec := range []map[string]any{pre, ip, stacks, flags, post} {
		for k, v := range sec {
			ctx[k] = v
		}
	}

	// ---- hero and meta ----
	ctx["hero"] = rec.Hero
	ctx["hero_pos_group"] = lookupBy(rec.Derived.Positions.PosGroup, rec.Hero)
	ctx["hero_position"] = lookupBy(rec.Derived.Positions.AbsPositions, rec.Hero)
	ctx["hand_id"] = hid
	ctx["month"] = month
	gs := make([]string, len(groups))
	for i, g := range groups {
		gs[i] = string(g)
	}
	ctx["groups"] = gs
	if rec.Hero == "" {
		slog.Debug("hand has no hero", "hand_id", hid)
	}

	// ---- preflop core ----
	setBools(ctx, pre, preflopBools)
	setNullables(ctx, pre, preflopNullables)
	ctx["pot_type"] = valueOr(pre, "pot_type", "none")

	// ---- ip/oop and multiway ----
	for _, street := range streetFlagFields {
		name := "heads_up_" + street
		if v, ok := ip[name]; ok && Truthy(v) {
			ctx[name] = v
		} else {
			ctx[name] = valueOr(post, name, false)
		}
	}
	for _, street := range streetFlagFields {
		name := "hero_ip_" + street
		if v, ok := ip[name]; ok && v != nil {
			ctx[name] = v
		} else {
			ctx[name] = valueOr(post, name, nil)
		}
	}
	for _, name := range playerCountFields {
		ctx[name] = valueOr(ip, name, 0)
	}

	// ---- stacks ----
	for _, r := range stackRenames {
		ctx[r[0]] = valueOr(stacks, r[1], nil)
	}
	setNullables(ctx, stacks, stackNullables)

	// ---- flags ----
	ctx["any_allin_preflop"] = valueOr(flags, "any_allin_preflop", false)

	// ---- postflop ----
	setBools(ctx, post, postflopBools)
	setNullables(ctx, post, postflopNullables)
	if v, ok := post["river_agg_pct"]; ok && Truthy(v) {
		ctx["river_agg_pct"] = v
	} else {
		ctx["river_agg_pct"] = valueOr(post, "agg_pct_river", nil)
	}

	return ctx
}

func setBools(ctx Context, sec map[string]any, names []string) {
	for _, n := range names {
		ctx[n] = valueOr(sec, n, false)
	}
}

func setNullables(ctx Context, sec map[string]any, names []string) {
	for _, n := range names {
		ctx[n] = valueOr(sec, n, nil)
	}
}

func valueOr(sec map[string]any, name string, def any) any {
	if v, ok := sec[name]; ok {
		return v
	}
	return def
}

func lookupBy(m map[string]any, key string) any {
	if key == "" || m == nil {
		return nil
	}
	if v, ok := m[key]; ok {
		return v
	}
	return nil
}
