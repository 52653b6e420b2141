// Package config loads the scoring configuration and the optional
// application settings file.
package config

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mgonc/go-poker-metrics/internal/model"
)

// Scoring modes.
const (
	ModeStep   = "step"
	ModeLinear = "linear"
)

// Non-KO combine modes. CombineByHands is accepted and currently weighs by
// opportunities; hand-level sample sizes need the partition counts joined in.
const (
	CombineByOpportunities = "opportunities"
	CombineByHands         = "hands"
)

// Weight validation modes.
const (
	ValidateOff    = "off"
	ValidateStrict = "strict"
	ValidateAuto   = "auto"
)

// ScoringDefaults carries the step scorer parameters and the sample gates.
// Step sizes are absolute percentage points; the down/up split exists
// because tolerance around an ideal is rarely symmetric.
type ScoringDefaults struct {
	StepDownPct           float64 `yaml:"step_down_pct" json:"step_down_pct"`
	StepUpPct             float64 `yaml:"step_up_pct" json:"step_up_pct"`
	PointsPerStepDown     float64 `yaml:"points_per_step_down" json:"points_per_step_down"`
	PointsPerStepUp       float64 `yaml:"points_per_step_up" json:"points_per_step_up"`
	MinOpportunitiesMonth int     `yaml:"min_opportunities_month" json:"min_opportunities_month"`
	MinOpportunitiesTotal int     `yaml:"min_opportunities_total" json:"min_opportunities_total"`
}

// StepOverride adjusts scorer parameters for a single stat. Nil fields fall
// back to the defaults.
type StepOverride struct {
	StepDownPct       *float64 `yaml:"step_down_pct" json:"step_down_pct,omitempty"`
	StepUpPct         *float64 `yaml:"step_up_pct" json:"step_up_pct,omitempty"`
	PointsPerStepDown *float64 `yaml:"points_per_step_down" json:"points_per_step_down,omitempty"`
	PointsPerStepUp   *float64 `yaml:"points_per_step_up" json:"points_per_step_up,omitempty"`
}

// Scoring selects the scorer and its parameters.
type Scoring struct {
	Mode    string                  `yaml:"mode" json:"mode"`
	Default ScoringDefaults         `yaml:"default" json:"default"`
	Stats   map[string]StepOverride `yaml:"stats" json:"stats,omitempty"`
}

// NonKOCombine controls how the two non-KO size groups merge into the
// virtual combined group.
type NonKOCombine struct {
	By string `yaml:"by" json:"by"`
}

// Weights holds the rollup weights. Stats is flat (a stat id appears in one
// subgroup); ValidateMode governs the sum-to-one check.
type Weights struct {
	ValidateMode string             `yaml:"validate" json:"validate"`
	Stats        map[string]float64 `yaml:"stats" json:"stats"`
	Subgroups    map[string]float64 `yaml:"subgroups" json:"subgroups"`
	Groups       map[string]float64 `yaml:"groups" json:"groups"`
}

// Cache gates scorecard reuse between runs.
type Cache struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path,omitempty"`
}

// Config is the full scoring configuration. Ideals maps stat id to a map
// whose keys are group names plus an optional lo/hi grading band; the two
// kinds of key share the map as they do in the shipped config files.
type Config struct {
	Scoring      Scoring                       `yaml:"scoring" json:"scoring"`
	TimeDecay    model.TimeDecay               `yaml:"time_decay" json:"time_decay"`
	NonKOCombine NonKOCombine                  `yaml:"nonko_combine" json:"nonko_combine"`
	Ideals       map[string]map[string]float64 `yaml:"ideals" json:"ideals"`
	Subgroups    map[string][]string           `yaml:"subgroups" json:"subgroups"`
	Weights      Weights                       `yaml:"weights" json:"weights"`
	Cache        Cache                         `yaml:"cache" json:"cache"`
}

// Default returns the configuration used when keys are absent from the
// file. Load decodes on top of it, so partial files inherit the rest.
func Default() *Config {
	return &Config{
		Scoring: Scoring{
			Mode: ModeStep,
			Default: ScoringDefaults{
				StepDownPct:       2.0,
				StepUpPct:         6.0,
				PointsPerStepDown: 10.0,
				PointsPerStepUp:   10.0,
			},
		},
		TimeDecay: model.TimeDecay{
			Weights3: []float64{0.5, 0.3, 0.2},
			Weights2: []float64{0.5, 0.5},
			Weights1: []float64{1.0},
		},
		NonKOCombine: NonKOCombine{By: CombineByOpportunities},
		Weights:      Weights{ValidateMode: ValidateAuto},
		Cache:        Cache{Enabled: true},
	}
}

// Load reads, validates and normalizes a scoring config file. An empty file
// yields the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.normalizeWeights(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if err := validateTimeDecay(&c.TimeDecay); err != nil {
		return err
	}
	if err := c.NonKOCombine.Validate(); err != nil {
		return err
	}
	if err := c.validateIdeals(); err != nil {
		return err
	}
	if err := c.validateSubgroups(); err != nil {
		return err
	}
	return c.Weights.Validate()
}

func (s *Scoring) Validate() error {
	switch s.Mode {
	case ModeStep, ModeLinear:
	default:
		return fmt.Errorf("scoring.mode: unsupported mode %q", s.Mode)
	}
	if err := s.Default.validate("scoring.default"); err != nil {
		return err
	}
	for id, ov := range s.Stats {
		if err := ov.validate("scoring.stats." + id); err != nil {
			return err
		}
	}
	return nil
}

func (d *ScoringDefaults) validate(prefix string) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"step_down_pct", d.StepDownPct},
		{"step_up_pct", d.StepUpPct},
		{"points_per_step_down", d.PointsPerStepDown},
		{"points_per_step_up", d.PointsPerStepUp},
	}
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("%s.%s: must not be negative", prefix, f.name)
		}
	}
	if d.MinOpportunitiesMonth < 0 {
		return fmt.Errorf("%s.min_opportunities_month: must not be negative", prefix)
	}
	if d.MinOpportunitiesTotal < 0 {
		return fmt.Errorf("%s.min_opportunities_total: must not be negative", prefix)
	}
	return nil
}

func (o *StepOverride) validate(prefix string) error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"step_down_pct", o.StepDownPct},
		{"step_up_pct", o.StepUpPct},
		{"points_per_step_down", o.PointsPerStepDown},
		{"points_per_step_up", o.PointsPerStepUp},
	}
	for _, f := range fields {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%s.%s: must not be negative", prefix, f.name)
		}
	}
	return nil
}

func validateTimeDecay(td *model.TimeDecay) error {
	profiles := []struct {
		name string
		want int
		w    []float64
	}{
		{"weights_3", 3, td.Weights3},
		{"weights_2", 2, td.Weights2},
		{"weights_1", 1, td.Weights1},
	}
	for _, p := range profiles {
		if len(p.w) != p.want {
			return fmt.Errorf("time_decay.%s: expected %d weights, got %d", p.name, p.want, len(p.w))
		}
		var sum float64
		for _, v := range p.w {
			if v < 0 {
				return fmt.Errorf("time_decay.%s: negative weight %v", p.name, v)
			}
			sum += v
		}
		if sum <= 0 {
			return fmt.Errorf("time_decay.%s: weights sum to zero", p.name)
		}
	}
	return nil
}

func (n *NonKOCombine) Validate() error {
	switch n.By {
	case CombineByOpportunities, CombineByHands:
		return nil
	}
	return fmt.Errorf("nonko_combine.by: unsupported mode %q", n.By)
}

func (c *Config) validateIdeals() error {
	for stat, m := range c.Ideals {
		for key, v := range m {
			if key == "lo" || key == "hi" {
				if v < 0 || v > 100 {
					return fmt.Errorf("ideals.%s.%s: %v outside [0,100]", stat, key, v)
				}
				continue
			}
			if _, err := model.ParseGroupID(key); err != nil {
				return fmt.Errorf("ideals.%s: %v", stat, err)
			}
			if v < 0 || v > 100 {
				return fmt.Errorf("ideals.%s.%s: ideal %v outside [0,100]", stat, key, v)
			}
		}
		lo, hasLo := m["lo"]
		hi, hasHi := m["hi"]
		if hasLo && hasHi && lo > hi {
			return fmt.Errorf("ideals.%s: lo %v above hi %v", stat, lo, hi)
		}
	}
	return nil
}

func (c *Config) validateSubgroups() error {
	for name, members := range c.Subgroups {
		if len(members) == 0 {
			return fmt.Errorf("subgroups.%s: no member stats", name)
		}
		for _, id := range members {
			if id == "" {
				return fmt.Errorf("subgroups.%s: empty stat id", name)
			}
		}
	}
	return nil
}

func (w *Weights) Validate() error {
	switch w.ValidateMode {
	case ValidateOff, ValidateStrict, ValidateAuto:
	default:
		return fmt.Errorf("weights.validate: unsupported mode %q", w.ValidateMode)
	}
	for name, v := range w.Stats {
		if v < 0 {
			return fmt.Errorf("weights.stats.%s: negative weight", name)
		}
	}
	for name, v := range w.Subgroups {
		if v < 0 {
			return fmt.Errorf("weights.subgroups.%s: negative weight", name)
		}
	}
	for name, v := range w.Groups {
		if v < 0 {
			return fmt.Errorf("weights.groups.%s: negative weight", name)
		}
		if _, err := model.ParseGroupID(name); err != nil {
			return fmt.Errorf("weights.groups: %v", err)
		}
	}
	return nil
}

// normalizeWeights applies the configured sum-to-one policy to each weight
// map. A sum of zero or one passes untouched.
func (c *Config) normalizeWeights() error {
	mode := c.Weights.ValidateMode
	var err error
	if c.Weights.Groups, err = sumAndFix(c.Weights.Groups, "groups", mode); err != nil {
		return err
	}
	if c.Weights.Stats, err = sumAndFix(c.Weights.Stats, "stats", mode); err != nil {
		return err
	}
	if c.Weights.Subgroups, err = sumAndFix(c.Weights.Subgroups, "subgroups", mode); err != nil {
		return err
	}
	return nil
}

func sumAndFix(weights map[string]float64, label, mode string) (map[string]float64, error) {
	if len(weights) == 0 {
		return weights, nil
	}
	var sum float64
	for _, v := range weights {
		sum += v
	}
	if sum == 0 || math.Abs(sum-1.0) < 1e-9 {
		return weights, nil
	}
	switch mode {
	case ValidateOff:
		slog.Info("accepting weights as configured", "weights", label, "sum", sum)
		return weights, nil
	case ValidateStrict:
		return nil, fmt.Errorf("weights.%s: sum %.4f, expected 1.0", label, sum)
	default:
		fixed := make(map[string]float64, len(weights))
		for k, v := range weights {
			fixed[k] = v / sum
		}
		slog.Warn("normalizing weights to sum 1.0", "weights", label, "sum", sum)
		return fixed, nil
	}
}

// IdealFor looks up the configured ideal for a stat in a group. The scoring
// fallback chain lives in the builder; this is a plain lookup.
func (c *Config) IdealFor(statID string, group model.GroupID) (float64, bool) {
	m, ok := c.Ideals[statID]
	if !ok {
		return 0, false
	}
	v, ok := m[string(group)]
	return v, ok
}

// IdealBand returns the lo/hi grading band for a stat when both bounds are
// configured.
func (c *Config) IdealBand(statID string) (lo, hi float64, ok bool) {
	m, found := c.Ideals[statID]
	if !found {
		return 0, 0, false
	}
	lo, hasLo := m["lo"]
	hi, hasHi := m["hi"]
	if !hasLo || !hasHi {
		return 0, 0, false
	}
	return lo, hi, true
}

// StepFor resolves scorer parameters for a stat, overlaying any per-stat
// override on the defaults field by field.
func (c *Config) StepFor(statID string) ScoringDefaults {
	p := c.Scoring.Default
	ov, ok := c.Scoring.Stats[statID]
	if !ok {
		return p
	}
	if ov.StepDownPct != nil {
		p.StepDownPct = *ov.StepDownPct
	}
	if ov.StepUpPct != nil {
		p.StepUpPct = *ov.StepUpPct
	}
	if ov.PointsPerStepDown != nil {
		p.PointsPerStepDown = *ov.PointsPerStepDown
	}
	if ov.PointsPerStepUp != nil {
		p.PointsPerStepUp = *ov.PointsPerStepUp
	}
	return p
}

// GroupWeights converts the raw group weight map to typed group ids.
func (c *Config) GroupWeights() map[model.GroupID]float64 {
	out := make(map[model.GroupID]float64, len(c.Weights.Groups))
	for name, w := range c.Weights.Groups {
		out[model.GroupID(name)] = w
	}
	return out
}

// CachePath returns the configured cache location, defaulting next to the
// scorecard.
func (c *Config) CachePath(outDir string) string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(outDir, ".cache.json")
}

// Hash fingerprints the effective config. Cache entries keyed on it go
// stale the moment any knob changes.
func (c *Config) Hash() string {
	blob, _ := json.Marshal(c)
	sum := sha1.Sum(blob)
	return hex.EncodeToString(sum[:])
}
