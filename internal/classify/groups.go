// Package classify assigns enriched hands to analysis groups and calendar
// month buckets. Group membership drives which catalog stats a hand can
// count toward; the month bucket is the time axis of the manifest.
package classify

import (
	"strings"

	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/parser"
)

// Tournament classes.
const (
	ClassPKO     = "pko"
	ClassMystery = "mystery"
	ClassNonKO   = "non-ko"
)

// pkoKeywords trigger inside the file id. " ko " keeps its surrounding
// spaces so that "poker" never matches.
var pkoKeywords = []string{"bounty", "knockout", " ko "}

// TourneyClass resolves the tournament class with falling precedence:
// explicit field, path hints in the file id, keywords in the file id,
// default non-ko.
func TourneyClass(rec *parser.Record) string {
	tc := strings.ToLower(rec.TourneyClass)
	switch tc {
	case ClassPKO, ClassMystery, ClassNonKO:
		return tc
	}

	fid := strings.ToLower(rec.FileID)
	switch {
	case strings.Contains(fid, "/pko/") || strings.Contains(fid, `\pko\`):
		return ClassPKO
	case strings.Contains(fid, "/myst") || strings.Contains(fid, `\myst`):
		return ClassMystery
	case strings.Contains(fid, "/non-ko/") || strings.Contains(fid, `\non-ko\`):
		return ClassNonKO
	}
	for _, kw := range pkoKeywords {
		if strings.Contains(fid, kw) {
			return ClassPKO
		}
	}
	return ClassNonKO
}

// TableMax resolves the seat count, preferring the enriched value over the
// top-level field. 0 means unresolved.
func TableMax(rec *parser.Record) int {
	if n := int(rec.Derived.Positions.TableMaxResolved); n != 0 {
		return n
	}
	return int(rec.TableMax)
}

func is6Max(seats int) bool { return seats >= 3 && seats <= 6 }
func is9Max(seats int) bool { return seats >= 7 && seats <= 10 }

// SawPostflop reports whether the raw streets section recorded any flop,
// turn or river action.
func SawPostflop(rec *parser.Record) bool {
	for _, street := range []string{"flop", "turn", "river"} {
		if st, ok := rec.Streets[street]; ok && len(st.Actions) > 0 {
			return true
		}
	}
	return false
}

// Groups returns the analysis groups a hand belongs to: at most one preflop
// group, plus postflop_all for any hand with action past preflop. Only
// non-ko hands split by table size; with an unresolvable size they get no
// preflop group at all. Order is stable, preflop group first.
func Groups(rec *parser.Record) []model.GroupID {
	var groups []model.GroupID

	switch TourneyClass(rec) {
	case ClassNonKO:
		seats := TableMax(rec)
		switch {
		case is9Max(seats):
			groups = append(groups, model.GroupNonKO9Max)
		case is6Max(seats):
			groups = append(groups, model.GroupNonKO6Max)
		}
	case ClassPKO:
		groups = append(groups, model.GroupPKO)
	case ClassMystery:
		groups = append(groups, model.GroupMystery)
	}

	if SawPostflop(rec) {
		groups = append(groups, model.GroupPostflopAll)
	}
	return groups
}
