package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgonc/go-poker-metrics/internal/model"
)

func fp(v float64) *float64 { return &v }

// writeConfig writes a scoring config document to a temp file.
func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "score.yml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

// loadCfgErr loads a document that must fail and returns the error text.
func loadCfgErr(t *testing.T, doc string) string {
	t.Helper()
	_, err := Load(writeConfig(t, doc))
	require.Error(t, err, "expected a load error")
	return err.Error()
}

// ---- Scoring config tests ----

// TestDefault_Values: the baked-in defaults the shipped configs rely on.
func TestDefault_Values(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ModeStep, cfg.Scoring.Mode)
	assert.Equal(t, 2.0, cfg.Scoring.Default.StepDownPct)
	assert.Equal(t, 6.0, cfg.Scoring.Default.StepUpPct)
	assert.Equal(t, 10.0, cfg.Scoring.Default.PointsPerStepDown)
	assert.Equal(t, 10.0, cfg.Scoring.Default.PointsPerStepUp)
	assert.Equal(t, []float64{0.5, 0.3, 0.2}, cfg.TimeDecay.Weights3)
	assert.Equal(t, []float64{0.5, 0.5}, cfg.TimeDecay.Weights2)
	assert.Equal(t, []float64{1.0}, cfg.TimeDecay.Weights1)
	assert.Equal(t, CombineByOpportunities, cfg.NonKOCombine.By)
	assert.Equal(t, ValidateAuto, cfg.Weights.ValidateMode)
	assert.True(t, cfg.Cache.Enabled)
}

// TestLoad_EmptyFile: an empty document inherits every default.
func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, ModeStep, cfg.Scoring.Mode)
	assert.True(t, cfg.Cache.Enabled)
}

// TestLoad_PartialFileKeepsRest: setting one knob leaves the others at
// their defaults.
func TestLoad_PartialFileKeepsRest(t *testing.T) {
	cfg, err := Load(writeConfig(t, "scoring:\n  mode: linear\n"))
	require.NoError(t, err)
	assert.Equal(t, ModeLinear, cfg.Scoring.Mode)
	assert.Equal(t, 2.0, cfg.Scoring.Default.StepDownPct, "untouched defaults survive")
}

// TestLoad_RejectsUnknownKeys: a typoed key is a parse error.
func TestLoad_RejectsUnknownKeys(t *testing.T) {
	msg := loadCfgErr(t, "scorring:\n  mode: step\n")
	assert.Contains(t, msg, "parse config")
}

// TestLoad_ValidationErrors: each section reports the offending path.
func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"bad mode", "scoring:\n  mode: quadratic\n", `scoring.mode: unsupported mode "quadratic"`},
		{"negative step", "scoring:\n  mode: step\n  default:\n    step_down_pct: -1\n", "scoring.default.step_down_pct: must not be negative"},
		{"negative override", "scoring:\n  mode: step\n  stats:\n    vpip:\n      step_up_pct: -1\n", "scoring.stats.vpip.step_up_pct: must not be negative"},
		{"short decay", "time_decay:\n  weights_3: [0.5, 0.5]\n", "time_decay.weights_3: expected 3 weights, got 2"},
		{"negative decay", "time_decay:\n  weights_3: [0.5, -0.3, 0.8]\n", "time_decay.weights_3: negative weight"},
		{"bad combine", "nonko_combine:\n  by: tables\n", `nonko_combine.by: unsupported mode "tables"`},
		{"ideal out of range", "ideals:\n  vpip:\n    nonko_combined: 150\n", "ideals.vpip.nonko_combined: ideal 150 outside [0,100]"},
		{"band out of range", "ideals:\n  vpip:\n    lo: -2\n", "ideals.vpip.lo: -2 outside [0,100]"},
		{"band inverted", "ideals:\n  vpip:\n    lo: 30\n    hi: 20\n", "ideals.vpip: lo 30 above hi 20"},
		{"ideal unknown group", "ideals:\n  vpip:\n    headsup: 20\n", `ideals.vpip: unknown group "headsup"`},
		{"empty subgroup", "subgroups:\n  core: []\n", "subgroups.core: no member stats"},
		{"bad validate mode", "weights:\n  validate: loose\n", `weights.validate: unsupported mode "loose"`},
		{"negative stat weight", "weights:\n  stats:\n    vpip: -0.2\n", "weights.stats.vpip: negative weight"},
		{"unknown weight group", "weights:\n  groups:\n    headsup: 1.0\n", `weights.groups: unknown group "headsup"`},
	}
	for _, c := range cases {
		msg := loadCfgErr(t, c.doc)
		assert.Contains(t, msg, c.want, c.name)
	}
}

// ---- Weight normalization tests ----

// TestLoad_WeightsAutoNormalize: auto mode rescales to a unit sum.
func TestLoad_WeightsAutoNormalize(t *testing.T) {
	cfg, err := Load(writeConfig(t, "weights:\n  validate: auto\n  stats:\n    a: 1.0\n    b: 1.0\n"))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cfg.Weights.Stats["a"], 1e-9)
	assert.InDelta(t, 0.5, cfg.Weights.Stats["b"], 1e-9)
}

// TestLoad_WeightsStrictRejects: strict mode reports the off sum.
func TestLoad_WeightsStrictRejects(t *testing.T) {
	msg := loadCfgErr(t, "weights:\n  validate: strict\n  stats:\n    a: 0.7\n    b: 0.5\n")
	assert.Contains(t, msg, "weights.stats: sum 1.2000, expected 1.0")
}

// TestLoad_WeightsOffAccepts: off mode keeps the raw values.
func TestLoad_WeightsOffAccepts(t *testing.T) {
	cfg, err := Load(writeConfig(t, "weights:\n  validate: \"off\"\n  stats:\n    a: 1.0\n    b: 1.0\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Weights.Stats["a"])
	assert.Equal(t, 1.0, cfg.Weights.Stats["b"])
}

// TestLoad_UnitSumUntouched: a sum already at 1.0 is left alone even in
// strict mode.
func TestLoad_UnitSumUntouched(t *testing.T) {
	cfg, err := Load(writeConfig(t, "weights:\n  validate: strict\n  stats:\n    a: 0.25\n    b: 0.75\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Weights.Stats["a"])
}

// ---- Lookup helper tests ----

// TestStepFor_Overlay: per-stat overrides replace only the fields they set.
func TestStepFor_Overlay(t *testing.T) {
	cfg := Default()
	cfg.Scoring.Stats = map[string]StepOverride{
		"vpip": {StepUpPct: fp(4.0), PointsPerStepUp: fp(5.0)},
	}

	p := cfg.StepFor("vpip")
	assert.Equal(t, 4.0, p.StepUpPct)
	assert.Equal(t, 5.0, p.PointsPerStepUp)
	assert.Equal(t, 2.0, p.StepDownPct, "unset fields keep the default")

	assert.Equal(t, cfg.Scoring.Default, cfg.StepFor("other"), "stats without overrides get the defaults")
}

// TestIdealLookups: IdealFor is a plain lookup and IdealBand needs both
// bounds.
func TestIdealLookups(t *testing.T) {
	cfg := Default()
	cfg.Ideals = map[string]map[string]float64{
		"vpip":    {"nonko_combined": 25.0, "lo": 22.0, "hi": 28.0},
		"fold_bb": {"pko": 60.0, "lo": 55.0},
	}

	v, ok := cfg.IdealFor("vpip", model.GroupNonKOCombined)
	require.True(t, ok)
	assert.Equal(t, 25.0, v)

	_, ok = cfg.IdealFor("vpip", model.GroupPKO)
	assert.False(t, ok, "no fallback at this level")

	lo, hi, ok := cfg.IdealBand("vpip")
	require.True(t, ok)
	assert.Equal(t, 22.0, lo)
	assert.Equal(t, 28.0, hi)

	_, _, ok = cfg.IdealBand("fold_bb")
	assert.False(t, ok, "lo alone is not a band")
}

// TestCachePath: explicit path wins, otherwise next to the scorecard.
func TestCachePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("out", ".cache.json"), cfg.CachePath("out"))

	cfg.Cache.Path = "/tmp/custom.cache"
	assert.Equal(t, "/tmp/custom.cache", cfg.CachePath("out"))
}

// TestHash_TracksKnobs: equal configs hash equal; any knob change moves the
// fingerprint.
func TestHash_TracksKnobs(t *testing.T) {
	a, b := Default(), Default()
	assert.Equal(t, a.Hash(), b.Hash())

	b.Scoring.Default.StepUpPct = 8.0
	assert.NotEqual(t, a.Hash(), b.Hash())
}

// ---- Application settings tests ----

// TestLoadApp_Defaults: no file and no environment yields the baked-in
// settings.
func TestLoadApp_Defaults(t *testing.T) {
	app, err := LoadApp("")
	require.NoError(t, err)
	assert.Equal(t, "info", app.Logger.Level)
	assert.Equal(t, "out", app.Output.Dir)
	assert.Equal(t, "claude-haiku-4-5-20251001", app.Analyze.Model)
	assert.Equal(t, 1024, app.Analyze.MaxTokens)
}

// TestLoadApp_EnvOverride: POKERMETRICS_ variables override defaults.
func TestLoadApp_EnvOverride(t *testing.T) {
	t.Setenv("POKERMETRICS_LOGGER_LEVEL", "debug")
	app, err := LoadApp("")
	require.NoError(t, err)
	assert.Equal(t, "debug", app.Logger.Level)
}

// TestLoadApp_RejectsBadLevel: validation runs on the merged result.
func TestLoadApp_RejectsBadLevel(t *testing.T) {
	t.Setenv("POKERMETRICS_LOGGER_LEVEL", "loud")
	_, err := LoadApp("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `logger.level: unsupported level "loud"`)
}

// TestLoadApp_File: file settings land in the struct; bad values fail
// validation.
func TestLoadApp_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  dir: artifacts\n"), 0o644))

	app, err := LoadApp(path)
	require.NoError(t, err)
	assert.Equal(t, "artifacts", app.Output.Dir)
	assert.Equal(t, "info", app.Logger.Level, "unset sections keep defaults")

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("analyze:\n  max_tokens: -5\n"), 0o644))
	_, err = LoadApp(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyze.max_tokens: must be positive")
}

// TestLoadApp_MissingFile: an explicit path must exist.
func TestLoadApp_MissingFile(t *testing.T) {
	_, err := LoadApp(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}
