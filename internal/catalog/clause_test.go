package catalog

import (
	"strings"
	"testing"

	"github.com/mgonc/go-poker-metrics/internal/parser"
)

// compile compiles a raw clause shape or fails the test.
func compile(t *testing.T, raw any) Clause {
	t.Helper()
	c, err := compileClause(raw)
	if err != nil {
		t.Fatalf("compile clause %#v: %v", raw, err)
	}
	return c
}

// evalCtx is the shared evaluation fixture. open_raiser is present but null,
// the way a built context carries unresolved nullables.
func evalCtx() parser.Context {
	return parser.Context{
		"hero_vpip":       true,
		"saw_flop":        false,
		"pot_type":        "SRP",
		"players_to_flop": 2,
		"eff_stack_srp":   25.5,
		"open_raiser":     nil,
		"table_max":       parser.FlexInt(9),
	}
}

// ---- Evaluation tests ----

// TestClause_RefAndLiteral: bare booleans and field references follow the
// missing-is-false rule.
func TestClause_RefAndLiteral(t *testing.T) {
	ctx := evalCtx()
	cases := []struct {
		raw  any
		want bool
	}{
		{true, true},
		{false, false},
		{"hero_vpip", true},
		{"saw_flop", false},
		{"no_such_field", false},
		{map[string]any{"is_true": "hero_vpip"}, true},
	}
	for _, c := range cases {
		if got := compile(t, c.raw).Eval(ctx); got != c.want {
			t.Errorf("eval %#v: got %v, want %v", c.raw, got, c.want)
		}
	}
}

// TestClause_IsFalse: present falsy values match, including null; a missing
// field never does.
func TestClause_IsFalse(t *testing.T) {
	ctx := evalCtx()
	cases := []struct {
		field string
		want  bool
	}{
		{"saw_flop", true},
		{"open_raiser", true},
		{"hero_vpip", false},
		{"no_such_field", false},
	}
	for _, c := range cases {
		clause := compile(t, map[string]any{"is_false": c.field})
		if got := clause.Eval(ctx); got != c.want {
			t.Errorf("is_false %q: got %v, want %v", c.field, got, c.want)
		}
	}
}

// TestClause_Equality: numbers compare by value across decoded widths;
// strings stay strict.
func TestClause_Equality(t *testing.T) {
	ctx := evalCtx()
	cases := []struct {
		raw  any
		want bool
	}{
		{map[string]any{"eq": []any{"players_to_flop", 2.0}}, true},
		{map[string]any{"eq": []any{"table_max", 9}}, true},
		{map[string]any{"eq": []any{"pot_type", "SRP"}}, true},
		{map[string]any{"eq": []any{"pot_type", "3BP"}}, false},
		{map[string]any{"eq": []any{"no_such_field", "SRP"}}, false},
		{map[string]any{"in": []any{"pot_type", []any{"SRP", "3BP"}}}, true},
		{map[string]any{"in": []any{"pot_type", []any{"4BP"}}}, false},
	}
	for _, c := range cases {
		if got := compile(t, c.raw).Eval(ctx); got != c.want {
			t.Errorf("eval %#v: got %v, want %v", c.raw, got, c.want)
		}
	}
}

// TestClause_Comparisons: bounds are inclusive for gte/lte and strict for
// gt/lt; missing or non-numeric fields never satisfy.
func TestClause_Comparisons(t *testing.T) {
	ctx := evalCtx()
	cases := []struct {
		op    string
		bound any
		want  bool
	}{
		{"gte", 25.5, true},
		{"gte", 25.6, false},
		{"lte", 25.5, true},
		{"lte", 25.4, false},
		{"gt", 25.5, false},
		{"gt", 25.4, true},
		{"lt", 25.5, false},
		{"lt", 25.6, true},
	}
	for _, c := range cases {
		clause := compile(t, map[string]any{c.op: []any{"eff_stack_srp", c.bound}})
		if got := clause.Eval(ctx); got != c.want {
			t.Errorf("%s %v: got %v, want %v", c.op, c.bound, got, c.want)
		}
	}

	missing := compile(t, map[string]any{"gte": []any{"no_such_field", 0}})
	if missing.Eval(ctx) {
		t.Error("gte on a missing field must not satisfy")
	}
	null := compile(t, map[string]any{"gte": []any{"open_raiser", 0}})
	if null.Eval(ctx) {
		t.Error("gte on a null field must not satisfy")
	}
}

// TestClause_Combinators: not, any, all and the implicit-all list shape.
func TestClause_Combinators(t *testing.T) {
	ctx := evalCtx()
	cases := []struct {
		raw  any
		want bool
	}{
		{map[string]any{"not": "saw_flop"}, true},
		{map[string]any{"not": "hero_vpip"}, false},
		{map[string]any{"any": []any{"saw_flop", "hero_vpip"}}, true},
		{map[string]any{"any": []any{"saw_flop", "no_such_field"}}, false},
		{map[string]any{"all": []any{"hero_vpip", map[string]any{"eq": []any{"pot_type", "SRP"}}}}, true},
		{map[string]any{"all": []any{"hero_vpip", "saw_flop"}}, false},
		{[]any{"hero_vpip", map[string]any{"not": "saw_flop"}}, true},
		{map[string]any{"any": []any{}}, false},
		{map[string]any{"all": []any{}}, true},
	}
	for _, c := range cases {
		if got := compile(t, c.raw).Eval(ctx); got != c.want {
			t.Errorf("eval %#v: got %v, want %v", c.raw, got, c.want)
		}
	}
}

// ---- Compilation error tests ----

// TestCompile_RejectsBadShapes: every malformed shape is a compile error
// with a usable message.
func TestCompile_RejectsBadShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want string
	}{
		{"nil", nil, "clause is empty"},
		{"empty field", "", "field name is empty"},
		{"two operators", map[string]any{"all": []any{}, "any": []any{}}, "exactly one operator"},
		{"unknown operator", map[string]any{"xor": []any{}}, `unknown clause operator "xor"`},
		{"eq no pair", map[string]any{"eq": "pot_type"}, "eq expects [field, value]"},
		{"eq list value", map[string]any{"eq": []any{"pot_type", []any{"SRP"}}}, "eq value must be a scalar"},
		{"in no list", map[string]any{"in": []any{"pot_type", "SRP"}}, "in expects [field, [values...]]"},
		{"in bad member", map[string]any{"in": []any{"pot_type", []any{[]any{}}}}, "in value must be a scalar"},
		{"gte no number", map[string]any{"gte": []any{"eff_stack_srp", "deep"}}, "gte bound must be numeric"},
		{"is_true no field", map[string]any{"is_true": 7}, "is_true expects a field name"},
		{"nested error", map[string]any{"all": []any{map[string]any{"bogus": 1}}}, "all[0]:"},
		{"not nested error", map[string]any{"not": ""}, "not: clause field name is empty"},
		{"number literal", 7, "unsupported clause shape"},
	}
	for _, c := range cases {
		_, err := compileClause(c.raw)
		if err == nil {
			t.Errorf("%s: expected compile error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: error %q should contain %q", c.name, err.Error(), c.want)
		}
	}
}
