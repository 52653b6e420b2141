package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/score"
	"github.com/mgonc/go-poker-metrics/internal/storage"
)

const analyzeSystemPrompt = `You are a tournament poker performance analyst. You are given structured data
from a hand-history stats tool and a question from the player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable — focus on what the player can actually improve.
- Avoid generic poker advice unless it directly explains a pattern in the data.

Metrics glossary:
- pct_td: attempts ÷ opportunities for a stat, time-decay weighted across the
  most recent months (newest month weighs most).
- score_td: 0–100 distance from the configured ideal frequency. 100 = at the
  ideal; each step of deviation costs points. Asymmetric around the ideal.
- months: qualifying months behind the time decay (max 3).
- Groups: nonko_9max / nonko_6max = non-knockout by table size;
  nonko_combined = both merged; pko = progressive knockout; mystery =
  mystery bounty; postflop_all = any hand that saw a flop, across formats.
- grade: A inside the ideal band, C just outside (<3 pp off), D further out.
- subgroup/group/overall: weighted mean rollups of the stat scores.
- opp/att: raw opportunity and attempt counts per month and group.`

var (
	analyzeModel     string
	analyzeAPIKey    string
	analyzeScorecard string
	analyzeCounts    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <question>",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
	Long: `Send the scorecard (and optionally the raw counts) to an Anthropic model
together with a question, and stream back an answer grounded in the data.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default from settings)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().StringVar(&analyzeScorecard, "scorecard", "", "scorecard JSON (default <out>/scorecard.json)")
	analyzeCmd.Flags().StringVar(&analyzeCounts, "counts", "", "also attach raw counts from this manifest")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question := args[0]

	path := analyzeScorecard
	if path == "" {
		path = filepath.Join(outDir, storage.ScorecardName)
	}
	sc, err := storage.ReadScorecardFile(path)
	if err != nil {
		return err
	}

	var man *model.Manifest
	if analyzeCounts != "" {
		man, err = storage.ReadManifestFile(analyzeCounts)
		if err != nil {
			return err
		}
	}

	contextJSON, err := buildScoreContext(sc, man)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	modelID := analyzeModel
	maxTokens := 1024
	if appCfg != nil {
		if modelID == "" {
			modelID = appCfg.Analyze.Model
		}
		maxTokens = appCfg.Analyze.MaxTokens
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, modelID, maxTokens, contextJSON, question)
}

// buildScoreContext serialises the scorecard (and optional counts) into
// compact JSON for the model.
func buildScoreContext(sc *model.Scorecard, man *model.Manifest) (string, error) {
	type statEntry struct {
		Stat   string  `json:"stat"`
		Group  string  `json:"group"`
		PctTD  float64 `json:"pct_td"`
		Score  float64 `json:"score_td"`
		Months int     `json:"months"`
		Grade  string  `json:"grade,omitempty"`
		Note   string  `json:"note,omitempty"`
	}
	var stats []statEntry
	for _, sid := range sc.StatIDs() {
		for _, g := range sortedScoreGroups(sc.StatLevel[sid]) {
			rec := sc.StatLevel[sid][g]
			grade := rec.Grade
			if grade == "-" {
				grade = ""
			}
			stats = append(stats, statEntry{
				Stat:   sid,
				Group:  string(g),
				PctTD:  rec.PctTimeDecay,
				Score:  rec.ScoreTimeDecay,
				Months: rec.MonthsUsed,
				Grade:  grade,
				Note:   rec.Note,
			})
		}
	}

	doc := map[string]interface{}{
		"subject":        "scorecard",
		"generated_at":   sc.GeneratedAt,
		"overall":        overallDoc(sc.Overall),
		"group_level":    sc.GroupLevel,
		"subgroup_level": sc.SubgroupLevel,
		"stat_level":     stats,
		"min_sample":     sc.MinSample,
	}

	if man != nil {
		type monthEntry struct {
			Month string                `json:"month"`
			Hands map[model.GroupID]int `json:"hands"`
			Cells map[model.GroupID]int `json:"stats_counted"`
		}
		months := make([]monthEntry, 0, len(man.Counts))
		for _, m := range man.Months() {
			cells := make(map[model.GroupID]int, len(man.Counts[m]))
			for g, byStat := range man.Counts[m] {
				cells[g] = len(byStat)
			}
			months = append(months, monthEntry{Month: m, Hands: man.HandCounts[m], Cells: cells})
		}
		doc["counts"] = map[string]interface{}{
			"hands_processed": man.HandsProcessed,
			"months":          months,
		}
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// overallDoc pairs the nullable overall score with its verdict label.
func overallDoc(overall *float64) map[string]interface{} {
	if overall == nil {
		return map[string]interface{}{"score": nil, "label": score.OverallLabel(nil)}
	}
	return map[string]interface{}{"score": *overall, "label": score.ScoreLabel(*overall)}
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID string, maxTokens int, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: int64(maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		// Provide a cleaner error message for common API errors.
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed — check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
