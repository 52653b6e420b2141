// Package catalog loads stat definitions and compiles their boolean clause
// DSL. Loading validates everything up front; a catalog that loads is safe
// to evaluate for the rest of the run.
package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mgonc/go-poker-metrics/internal/model"
)

// Stat scopes.
const (
	ScopePreflop  = "preflop"
	ScopePostflop = "postflop"
)

// Stat is one compiled catalog entry, immutable for the run.
type Stat struct {
	ID              string
	Label           string
	Family          string
	Scope           string
	AppliesToGroups []model.GroupID
	Filters         FilterSet
	Opportunity     Clause
	Attempt         Clause
}

// Catalog holds the compiled stat definitions plus metric defaults.
type Catalog struct {
	Version int
	Path    string
	Metric  model.Metric
	Stats   []Stat

	byID map[string]*Stat
}

type rawMetric struct {
	Type     string `yaml:"type"`
	Decimals *int   `yaml:"decimals"`
}

type rawDefaults struct {
	Metric *rawMetric `yaml:"metric"`
}

type rawStat struct {
	ID              string    `yaml:"id"`
	Label           string    `yaml:"label"`
	Family          string    `yaml:"family"`
	Scope           string    `yaml:"scope"`
	AppliesToGroups []string  `yaml:"applies_to_groups"`
	Filters         FilterSet `yaml:"filters"`
	Opportunity     any       `yaml:"opportunity"`
	Attempt         any       `yaml:"attempt"`
}

type rawCatalog struct {
	Version  int         `yaml:"version"`
	Defaults rawDefaults `yaml:"defaults"`
	Stats    []rawStat   `yaml:"stats"`
}

// Load reads, validates and compiles the catalog at path. Every problem is a
// load error naming the offending stat; nothing is deferred to run time.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var raw rawCatalog
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(raw.Stats) == 0 {
		return nil, fmt.Errorf("catalog %s has no stats", path)
	}

	metric := model.DefaultMetric()
	if m := raw.Defaults.Metric; m != nil {
		if m.Type != "" && m.Type != metric.Type {
			return nil, fmt.Errorf("unsupported metric type %q", m.Type)
		}
		if m.Decimals != nil {
			if *m.Decimals < 0 || *m.Decimals > 6 {
				return nil, fmt.Errorf("metric decimals out of range: %d", *m.Decimals)
			}
			metric.Decimals = *m.Decimals
		}
	}

	stats := make([]Stat, 0, len(raw.Stats))
	for i, rs := range raw.Stats {
		stat, err := compileStat(rs)
		if err != nil {
			if rs.ID != "" {
				return nil, fmt.Errorf("stat %q: %w", rs.ID, err)
			}
			return nil, fmt.Errorf("stat #%d: %w", i+1, err)
		}
		stats = append(stats, stat)
	}

	byID := make(map[string]*Stat, len(stats))
	for i := range stats {
		if _, dup := byID[stats[i].ID]; dup {
			return nil, fmt.Errorf("duplicate stat id %q", stats[i].ID)
		}
		byID[stats[i].ID] = &stats[i]
	}

	return &Catalog{
		Version: raw.Version,
		Path:    path,
		Metric:  metric,
		Stats:   stats,
		byID:    byID,
	}, nil
}

func compileStat(rs rawStat) (Stat, error) {
	if rs.ID == "" {
		return Stat{}, fmt.Errorf("missing id")
	}
	if rs.Label == "" {
		return Stat{}, fmt.Errorf("missing label")
	}

	scope := rs.Scope
	if scope == "" {
		scope = ScopePreflop
	}
	if scope != ScopePreflop && scope != ScopePostflop {
		return Stat{}, fmt.Errorf("unknown scope %q", rs.Scope)
	}

	if len(rs.AppliesToGroups) == 0 {
		return Stat{}, fmt.Errorf("applies_to_groups is empty")
	}
	groups := make([]model.GroupID, 0, len(rs.AppliesToGroups))
	for _, name := range rs.AppliesToGroups {
		g, err := model.ParseGroupID(name)
		if err != nil {
			return Stat{}, err
		}
		if g == model.GroupNonKOCombined {
			return Stat{}, fmt.Errorf("group %q is virtual and cannot collect counts", name)
		}
		groups = append(groups, g)
	}

	if rs.Filters.EffStackMinBB != nil && *rs.Filters.EffStackMinBB < 0 {
		return Stat{}, fmt.Errorf("eff_stack_min_bb is negative")
	}

	if rs.Opportunity == nil {
		return Stat{}, fmt.Errorf("missing opportunity")
	}
	if rs.Attempt == nil {
		return Stat{}, fmt.Errorf("missing attempt")
	}
	opp, err := compileClause(rs.Opportunity)
	if err != nil {
		return Stat{}, fmt.Errorf("opportunity: %w", err)
	}
	att, err := compileClause(rs.Attempt)
	if err != nil {
		return Stat{}, fmt.Errorf("attempt: %w", err)
	}

	return Stat{
		ID:              rs.ID,
		Label:           rs.Label,
		Family:          rs.Family,
		Scope:           scope,
		AppliesToGroups: groups,
		Filters:         rs.Filters,
		Opportunity:     opp,
		Attempt:         att,
	}, nil
}

// Stat looks up a definition by id.
func (c *Catalog) Stat(id string) (*Stat, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// IDs returns stat ids in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.Stats))
	for i := range c.Stats {
		out[i] = c.Stats[i].ID
	}
	return out
}
