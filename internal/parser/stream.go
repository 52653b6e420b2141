package parser

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/mgonc/go-poker-metrics/internal/model"
)

// maxLineBytes bounds one JSONL line. Heavily enriched hands run a few
// hundred KB; 10 MB leaves wide margin.
const maxLineBytes = 10 << 20

// Stream reads enriched hand records line by line. Input may be compressed;
// .gz, .zst and .bz2 are handled transparently by extension. A malformed
// line surfaces as *model.LineError and the stream stays usable, which is
// how callers implement per-line recovery.
type Stream struct {
	f    *os.File
	zd   *zstd.Decoder
	gz   *gzip.Reader
	sc   *bufio.Scanner
	line int
	done bool
}

// Open opens path for streaming.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	s := &Stream{f: f}
	var src io.Reader = f
	switch {
	case strings.HasSuffix(path, ".bz2"):
		src = bzip2.NewReader(f)
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd: %w", err)
		}
		s.zd = dec
		src = dec
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip: %w", err)
		}
		s.gz = gz
		src = gz
	}

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	s.sc = sc
	return s, nil
}

// Next returns the next record and its 1-based physical line number.
// A decode failure comes back as *model.LineError; calling Next again
// resumes at the following line. io.EOF ends the stream. A read error from
// the underlying file yields one final LineError, then EOF.
func (s *Stream) Next() (*Record, int, error) {
	if s.done {
		return nil, s.line, io.EOF
	}
	if !s.sc.Scan() {
		s.done = true
		if err := s.sc.Err(); err != nil {
			s.line++
			return nil, s.line, &model.LineError{Line: s.line, Message: err.Error()}
		}
		return nil, s.line, io.EOF
	}
	s.line++

	var rec Record
	if err := json.Unmarshal(s.sc.Bytes(), &rec); err != nil {
		return nil, s.line, &model.LineError{Line: s.line, Message: err.Error()}
	}
	return &rec, s.line, nil
}

// Close releases the file and any decompressors.
func (s *Stream) Close() error {
	if s.zd != nil {
		s.zd.Close()
	}
	var gzErr error
	if s.gz != nil {
		gzErr = s.gz.Close()
	}
	if err := s.f.Close(); err != nil {
		return err
	}
	return gzErr
}
