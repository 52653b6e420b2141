package catalog

import (
	"fmt"
	"slices"
)

// Finding is a non-fatal catalog smell reported by Lint.
type Finding struct {
	StatID  string
	Message string
}

// Lint reports suspicious definitions that Load intentionally tolerates:
// duplicated labels, gates that read fields outside their scope, and
// is_false clauses whose absent-field behavior surprises catalog authors.
func (c *Catalog) Lint() []Finding {
	var out []Finding
	labels := make(map[string]string, len(c.Stats))

	for i := range c.Stats {
		s := &c.Stats[i]

		if prev, ok := labels[s.Label]; ok {
			out = append(out, Finding{s.ID, fmt.Sprintf("label %q already used by %s", s.Label, prev)})
		} else {
			labels[s.Label] = s.ID
		}

		if s.Filters.HeadsUpOnly && s.Scope == ScopePreflop {
			out = append(out, Finding{s.ID, "heads_up_only on a preflop stat gates on the flop flag"})
		}

		if s.Filters.EffStackMinBB != nil && !slices.Contains(s.Filters.PotType, "SRP") {
			out = append(out, Finding{s.ID, "eff_stack_min_bb reads the single-raised-pot stack; consider pot_type [SRP]"})
		}

		for _, field := range isFalseFields(s.Opportunity, s.Attempt) {
			out = append(out, Finding{s.ID, fmt.Sprintf("is_false %q never matches when the field is absent", field)})
		}
	}
	return out
}

func isFalseFields(clauses ...Clause) []string {
	var out []string
	var walk func(Clause)
	walk = func(c Clause) {
		switch v := c.(type) {
		case isFalse:
			out = append(out, string(v))
		case allOf:
			for _, inner := range v {
				walk(inner)
			}
		case anyOf:
			for _, inner := range v {
				walk(inner)
			}
		case notOf:
			walk(v.inner)
		}
	}
	for _, c := range clauses {
		walk(c)
	}
	return out
}
