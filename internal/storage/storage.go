// Package storage persists and reloads the artifacts a run produces.
package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgonc/go-poker-metrics/internal/model"
)

// Artifact names under the store directory.
const (
	ManifestName  = "stat_counts.json"
	ScorecardName = "scorecard.json"
	ErrorLogName  = "stats_errors.log"
	CacheName     = ".cache.json"
	IndexDirName  = "index"
	ExportsDir    = "exports"
)

// Store reads and writes artifacts under a single output directory.
type Store struct {
	Dir string
}

// Open ensures the artifact directory exists.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Path resolves a name inside the store.
func (s *Store) Path(name string) string { return filepath.Join(s.Dir, name) }

// IndexDir is where the aggregator appends provenance id files.
func (s *Store) IndexDir() string { return s.Path(IndexDirName) }

// ---- JSON artifacts ----

// WriteManifest writes stat_counts.json.
func (s *Store) WriteManifest(m *model.Manifest) error {
	return s.writeJSON(ManifestName, m)
}

// ReadManifest loads stat_counts.json from the store.
func (s *Store) ReadManifest() (*model.Manifest, error) {
	return ReadManifestFile(s.Path(ManifestName))
}

// WriteScorecard writes scorecard.json.
func (s *Store) WriteScorecard(sc *model.Scorecard) error {
	return s.writeJSON(ScorecardName, sc)
}

// ReadScorecard loads scorecard.json from the store.
func (s *Store) ReadScorecard() (*model.Scorecard, error) {
	return ReadScorecardFile(s.Path(ScorecardName))
}

// WriteErrorLog writes the recovered line errors as a JSON array. Callers
// skip it when the run was clean.
func (s *Store) WriteErrorLog(errs []model.LineError) error {
	return s.writeJSON(ErrorLogName, errs)
}

// ReadManifestFile loads a manifest from an explicit path, for commands
// that take --counts.
func ReadManifestFile(path string) (*model.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m model.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// ReadScorecardFile loads a scorecard from an explicit path.
func ReadScorecardFile(path string) (*model.Scorecard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scorecard: %w", err)
	}
	var sc model.Scorecard
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scorecard %s: %w", path, err)
	}
	return &sc, nil
}

// ---- Text and CSV artifacts ----

// WriteCSV writes a header plus rows to a CSV artifact.
func (s *Store) WriteCSV(name string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return s.writeAtomic(name, buf.Bytes())
}

// WriteText writes a plain text artifact.
func (s *Store) WriteText(name, text string) error {
	return s.writeAtomic(name, []byte(text))
}

// ReadIDs loads a provenance index file: one hand id per line.
func (s *Store) ReadIDs(rel string) ([]string, error) {
	data, err := os.ReadFile(s.Path(rel))
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", rel, err)
	}
	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			ids = append(ids, line)
		}
	}
	return ids, nil
}

// ---- Maintenance ----

// Artifact is one stored file, relative to the store directory.
type Artifact struct {
	Rel  string
	Size int64
}

// ListArtifacts walks the store and returns every file, sorted by path.
func (s *Store) ListArtifacts() ([]Artifact, error) {
	var out []Artifact
	err := filepath.WalkDir(s.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Dir, p)
		if err != nil {
			return err
		}
		out = append(out, Artifact{Rel: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rel < out[j].Rel })
	return out, nil
}

// Clean removes the known generated artifacts. With force false it only
// reports what would go; nothing outside the known set is ever touched.
func (s *Store) Clean(force bool) ([]string, error) {
	var targets []string
	for _, name := range []string{ManifestName, ScorecardName, ErrorLogName, CacheName} {
		if _, err := os.Stat(s.Path(name)); err == nil {
			targets = append(targets, name)
		}
	}
	for _, dir := range []string{IndexDirName, ExportsDir} {
		if fi, err := os.Stat(s.Path(dir)); err == nil && fi.IsDir() {
			targets = append(targets, dir)
		}
	}
	if !force {
		return targets, nil
	}
	for _, name := range targets {
		if err := os.RemoveAll(s.Path(name)); err != nil {
			return nil, fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return targets, nil
}

// ---- Internals ----

func (s *Store) writeJSON(name string, v any) error {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return s.writeAtomic(name, append(blob, '\n'))
}

// writeAtomic lands data via a temp file and rename so a crashed run never
// leaves a torn artifact.
func (s *Store) writeAtomic(name string, data []byte) error {
	dst := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
