// Package aggregator runs the counting loop: it streams enriched hands,
// classifies them, evaluates every applicable catalog stat and accumulates
// opportunity/attempt counters plus provenance index files, ending in the
// stat_counts.json manifest.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mgonc/go-poker-metrics/internal/catalog"
	"github.com/mgonc/go-poker-metrics/internal/classify"
	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/parser"
	"github.com/mgonc/go-poker-metrics/internal/storage"
)

type cell struct {
	opps, atts int
}

// Session owns all mutable state of one aggregation run.
type Session struct {
	cat   *catalog.Catalog
	store *storage.Store
	idx   *indexPool

	// MaxErrors aborts the run once more than this many lines have been
	// recovered. Negative means unlimited.
	MaxErrors int

	input      string
	hands      int
	counts     map[string]map[model.GroupID]map[string]*cell
	handCounts map[string]map[model.GroupID]int
	errs       []model.LineError
	lastMonth  string
}

// New creates the artifact and index directories and an empty session.
func New(cat *catalog.Catalog, outDir string) (*Session, error) {
	store, err := storage.Open(outDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(store.IndexDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &Session{
		cat:        cat,
		store:      store,
		idx:        newIndexPool(store.IndexDir()),
		MaxErrors:  -1,
		counts:     make(map[string]map[model.GroupID]map[string]*cell),
		handCounts: make(map[string]map[model.GroupID]int),
	}, nil
}

// Run streams the input and counts every record. Malformed lines are
// collected and skipped; only the MaxErrors policy, a cancelled context or
// an index write failure stop the run early.
func (s *Session) Run(ctx context.Context, inputPath string) error {
	s.input = inputPath
	stream, err := parser.Open(inputPath)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		select {
		case <-ctx.Done():
			s.idx.closeAll()
			return ctx.Err()
		default:
		}

		rec, _, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var le *model.LineError
			if !errors.As(err, &le) {
				s.idx.closeAll()
				return err
			}
			s.errs = append(s.errs, *le)
			slog.Warn("skipping malformed line", "line", le.Line, "error", le.Message)
			if s.MaxErrors >= 0 && len(s.errs) > s.MaxErrors {
				s.idx.closeAll()
				return fmt.Errorf("aborting after %d malformed lines (max %d)", len(s.errs), s.MaxErrors)
			}
			continue
		}

		s.hands++
		if err := s.consume(rec); err != nil {
			s.idx.closeAll()
			return err
		}
	}
}

// consume classifies one decoded hand and credits every applicable stat.
func (s *Session) consume(rec *parser.Record) error {
	fallback := rec.Month
	if fallback == "" {
		fallback = s.lastMonth
	}
	month, ok := classify.MonthBucket(rec.TimestampUTC, fallback)
	if ok {
		s.lastMonth = month
	}

	groups := classify.Groups(rec)
	hid := parser.HandKey(rec)
	ctx := parser.BuildContext(rec, hid, month, groups)

	for _, g := range groups {
		byGroup := s.handCounts[month]
		if byGroup == nil {
			byGroup = make(map[model.GroupID]int)
			s.handCounts[month] = byGroup
		}
		byGroup[g]++
	}

	for i := range s.cat.Stats {
		stat := &s.cat.Stats[i]

		var matched []model.GroupID
		for _, g := range groups {
			if slices.Contains(stat.AppliesToGroups, g) {
				matched = append(matched, g)
			}
		}
		if len(matched) == 0 {
			continue
		}

		// Clauses see the same context for every group, so evaluate once
		// and credit each matched group with the same outcome.
		if !stat.Filters.Pass(stat.Scope, ctx) {
			continue
		}
		if !stat.Opportunity.Eval(ctx) {
			continue
		}
		attempt := stat.Attempt.Eval(ctx)

		for _, g := range matched {
			c := s.cell(month, g, stat.ID)
			c.opps++
			if err := s.idx.append(indexKey{month, g, stat.ID, kindOpps}, hid); err != nil {
				return err
			}
			if attempt {
				c.atts++
				if err := s.idx.append(indexKey{month, g, stat.ID, kindAttempts}, hid); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Session) cell(month string, g model.GroupID, statID string) *cell {
	byGroup := s.counts[month]
	if byGroup == nil {
		byGroup = make(map[model.GroupID]map[string]*cell)
		s.counts[month] = byGroup
	}
	byStat := byGroup[g]
	if byStat == nil {
		byStat = make(map[string]*cell)
		byGroup[g] = byStat
	}
	c := byStat[statID]
	if c == nil {
		c = &cell{}
		byStat[statID] = c
	}
	return c
}

// Finish closes the provenance pool, writes the manifest and the error log
// (the latter only when lines were recovered) and reports the run.
func (s *Session) Finish() (*model.Manifest, model.RunSummary, error) {
	if err := s.idx.closeAll(); err != nil {
		return nil, model.RunSummary{}, err
	}

	man := &model.Manifest{
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		RunID:          uuid.NewString(),
		Input:          s.input,
		Catalog:        s.cat.Path,
		Metric:         s.cat.Metric,
		HandsProcessed: s.hands,
		Errors:         len(s.errs),
		StatsComputed:  len(s.cat.Stats),
		HandCounts:     s.handCounts,
		Counts:         make(map[string]map[model.GroupID]map[string]model.StatCell, len(s.counts)),
	}
	for month, byGroup := range s.counts {
		mg := make(map[model.GroupID]map[string]model.StatCell, len(byGroup))
		for g, byStat := range byGroup {
			ms := make(map[string]model.StatCell, len(byStat))
			for id, c := range byStat {
				ms[id] = model.StatCell{
					Opportunities: c.opps,
					Attempts:      c.atts,
					Percentage:    model.Percentage(c.atts, c.opps, s.cat.Metric.Decimals),
					IndexFiles: model.IndexPair{
						Opps:     s.idx.rel(indexKey{month, g, id, kindOpps}),
						Attempts: s.idx.rel(indexKey{month, g, id, kindAttempts}),
					},
				}
			}
			mg[g] = ms
		}
		man.Counts[month] = mg
	}

	if err := s.store.WriteManifest(man); err != nil {
		return nil, model.RunSummary{}, err
	}
	if len(s.errs) > 0 {
		if err := s.store.WriteErrorLog(s.errs); err != nil {
			return nil, model.RunSummary{}, err
		}
	}

	sum := model.RunSummary{
		OutputPath:      s.store.Path(storage.ManifestName),
		IndexDir:        s.store.IndexDir(),
		HandsProcessed:  s.hands,
		StatsComputed:   len(s.cat.Stats),
		ErrorCount:      len(s.errs),
		MonthsGenerated: len(s.counts),
		Stats:           s.cat.IDs(),
	}
	return man, sum, nil
}

// Close releases the provenance handles. Safe after Finish.
func (s *Session) Close() error {
	return s.idx.closeAll()
}

// Errors returns the recovered line errors in input order.
func (s *Session) Errors() []model.LineError {
	return s.errs
}
