package aggregator

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgonc/go-poker-metrics/internal/model"
	"github.com/mgonc/go-poker-metrics/internal/storage"
)

// Index file kinds. A hand id lands in opps when the opportunity clause
// matched and additionally in attempts when the attempt clause matched.
const (
	kindOpps     = "opps"
	kindAttempts = "attempts"
)

type indexKey struct {
	month string
	group model.GroupID
	stat  string
	kind  string
}

func (k indexKey) filename() string {
	return fmt.Sprintf("%s__%s__%s__%s.ids", k.month, k.group, k.stat, k.kind)
}

type indexHandle struct {
	f *os.File
	w *bufio.Writer
}

// indexPool owns the provenance file handles for one run. Handles open
// lazily on the first id for their cell, truncating anything a previous run
// left behind, and stay open until closeAll.
type indexPool struct {
	dir     string
	handles map[indexKey]*indexHandle
	closed  bool
}

func newIndexPool(dir string) *indexPool {
	return &indexPool{
		dir:     dir,
		handles: make(map[indexKey]*indexHandle),
	}
}

// rel returns the manifest-facing path of a cell's index file, relative to
// the artifact directory.
func (p *indexPool) rel(k indexKey) string {
	return storage.IndexDirName + "/" + k.filename()
}

// append writes one hand id line to the cell's index file.
func (p *indexPool) append(k indexKey, hid string) error {
	if p.closed {
		return fmt.Errorf("index pool already closed")
	}
	h := p.handles[k]
	if h == nil {
		f, err := os.Create(filepath.Join(p.dir, k.filename()))
		if err != nil {
			return fmt.Errorf("open index %s: %w", k.filename(), err)
		}
		h = &indexHandle{f: f, w: bufio.NewWriter(f)}
		p.handles[k] = h
	}
	if _, err := h.w.WriteString(hid + "\n"); err != nil {
		return fmt.Errorf("write index %s: %w", k.filename(), err)
	}
	return nil
}

// closeAll flushes and closes every handle, keeping the first error.
// Idempotent so abort paths and Finish can both call it.
func (p *indexPool) closeAll() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var first error
	for k, h := range p.handles {
		if err := h.w.Flush(); err != nil && first == nil {
			first = fmt.Errorf("flush index %s: %w", k.filename(), err)
		}
		if err := h.f.Close(); err != nil && first == nil {
			first = fmt.Errorf("close index %s: %w", k.filename(), err)
		}
	}
	p.handles = nil
	return first
}
