package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgonc/go-poker-metrics/internal/catalog"
	"github.com/mgonc/go-poker-metrics/internal/model"
)

func testManifest() *model.Manifest {
	return &model.Manifest{
		GeneratedAt:    "2025-08-01T10:00:00Z",
		RunID:          "run-1",
		Input:          "hands.jsonl",
		Catalog:        "stats.yaml",
		Metric:         model.DefaultMetric(),
		HandsProcessed: 10,
		StatsComputed:  1,
		HandCounts: map[string]map[model.GroupID]int{
			"2025-06": {model.GroupNonKO9Max: 4},
			"2025-07": {model.GroupNonKO9Max: 6},
		},
		Counts: map[string]map[model.GroupID]map[string]model.StatCell{
			"2025-06": {
				model.GroupNonKO9Max: {
					"RFI_EARLY": {Opportunities: 4, Attempts: 1, Percentage: 25.0},
				},
			},
			"2025-07": {
				model.GroupNonKO9Max: {
					"RFI_EARLY": {Opportunities: 6, Attempts: 3, Percentage: 50.0},
				},
			},
		},
	}
}

func TestStatTableFiltersAndRenders(t *testing.T) {
	var buf bytes.Buffer
	n := StatTable(&buf, testManifest(), "2025-07", model.GroupNonKO9Max, "")
	if n != 1 {
		t.Fatalf("rows: want 1, got %d", n)
	}
	out := buf.String()
	for _, want := range []string{"RFI_EARLY", "2025-07", "50.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "2025-06") {
		t.Error("month filter leaked 2025-06 rows")
	}
}

func TestStatTableNoMatches(t *testing.T) {
	var buf bytes.Buffer
	n := StatTable(&buf, testManifest(), "2030-01", "", "")
	if n != 0 {
		t.Fatalf("rows: want 0, got %d", n)
	}
	if !strings.Contains(buf.String(), "no matching cells") {
		t.Errorf("expected the empty note, got:\n%s", buf.String())
	}
}

func TestSummaryTables(t *testing.T) {
	var buf bytes.Buffer
	SummaryTables(&buf, testManifest())
	out := buf.String()
	for _, want := range []string{"hands.jsonl", "run-1", "NONKO_9MAX", "2025-06", "2025-07"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestTrendTableDeltas(t *testing.T) {
	var buf bytes.Buffer
	n := TrendTable(&buf, testManifest(), "RFI_EARLY", model.GroupNonKO9Max)
	if n != 2 {
		t.Fatalf("rows: want 2, got %d", n)
	}
	out := buf.String()
	// First month has no delta; the second gained 25 points.
	if !strings.Contains(out, "—") {
		t.Error("first month should show the dash placeholder")
	}
	if !strings.Contains(out, "+25.00") {
		t.Errorf("expected +25.00 delta:\n%s", out)
	}
}

func TestScoreTables(t *testing.T) {
	overall := 82.5
	sc := &model.Scorecard{
		StatLevel: map[string]map[model.GroupID]model.StatScore{
			"RFI_EARLY": {
				model.GroupNonKOCombined: {
					PctTimeDecay:   18.4,
					ScoreTimeDecay: 90.0,
					MonthsUsed:     3,
					Grade:          "A",
					Note:           "Dentro do ideal (17.00–21.00).",
				},
			},
		},
		SubgroupLevel: map[string]map[model.GroupID]float64{
			"RFI": {model.GroupNonKOCombined: 90.0},
		},
		GroupLevel: map[model.GroupID]float64{model.GroupNonKOCombined: 82.5},
		Overall:    &overall,
	}

	var buf bytes.Buffer
	ScoreTables(&buf, sc)
	out := buf.String()
	for _, want := range []string{"RFI_EARLY", "nonko_combined", "90.00", "Dentro do ideal", "Bom", "Overall: 82.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("score output missing %q:\n%s", want, out)
		}
	}
}

func TestScoreTablesEmptyOverall(t *testing.T) {
	sc := &model.Scorecard{
		StatLevel: map[string]map[model.GroupID]model.StatScore{},
	}
	var buf bytes.Buffer
	ScoreTables(&buf, sc)
	if !strings.Contains(buf.String(), "Sem amostra") {
		t.Errorf("nil overall should render the no-sample label:\n%s", buf.String())
	}
}

func TestCatalogTable(t *testing.T) {
	yaml := `version: 1
stats:
  - id: RFI_EARLY
    label: RFI early position
    family: RFI
    scope: preflop
    applies_to_groups: [nonko_9max, nonko_6max]
    opportunity: unopened_pot
    attempt: hero_raised_first_in
`
	path := filepath.Join(t.TempDir(), "stats.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	var buf bytes.Buffer
	CatalogTable(&buf, cat)
	out := buf.String()
	for _, want := range []string{"RFI_EARLY", "RFI early position", "preflop", "nonko_9max, nonko_6max"} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog table missing %q:\n%s", want, out)
		}
	}
}
