package score

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mgonc/go-poker-metrics/internal/model"
)

// CacheKey identifies the inputs a cached scorecard was built from. A key
// mismatch on any field is a rebuild.
type CacheKey struct {
	StatCountsPath  string `json:"stat_counts_path"`
	StatCountsMtime int64  `json:"stat_counts_mtime"`
	ConfigHash      string `json:"cfg_hash"`
}

// cacheEntry is the persisted .cache.json document.
type cacheEntry struct {
	Key           CacheKey         `json:"key"`
	ScorecardPath string           `json:"scorecard_path"`
	Payload       *model.Scorecard `json:"payload"`
}

// NewCacheKey stats the manifest file and pairs it with the config
// fingerprint. Mtime is in nanoseconds so back-to-back runs in the same
// second still invalidate.
func NewCacheKey(countsPath, cfgHash string) (CacheKey, error) {
	st, err := os.Stat(countsPath)
	if err != nil {
		return CacheKey{}, err
	}
	abs, err := filepath.Abs(countsPath)
	if err != nil {
		return CacheKey{}, err
	}
	return CacheKey{
		StatCountsPath:  abs,
		StatCountsMtime: st.ModTime().UnixNano(),
		ConfigHash:      cfgHash,
	}, nil
}

// LoadCache returns the cached scorecard when the key matches and the
// cached scorecard file still exists. Any read or decode problem is a
// miss, never an error.
func LoadCache(path string, key CacheKey) (*model.Scorecard, string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", false
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, "", false
	}
	if e.Key != key || e.Payload == nil {
		return nil, "", false
	}
	if _, err := os.Stat(e.ScorecardPath); err != nil {
		return nil, "", false
	}
	return e.Payload, e.ScorecardPath, true
}

// SaveCache writes the cache entry. Failures are logged, never fatal; the
// scorecard itself is already on disk by the time this runs.
func SaveCache(path string, key CacheKey, scorecardPath string, payload *model.Scorecard) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("cache write failed", "path", path, "error", err)
		return
	}
	blob, err := json.MarshalIndent(cacheEntry{Key: key, ScorecardPath: scorecardPath, Payload: payload}, "", "  ")
	if err != nil {
		slog.Warn("cache write failed", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, append(blob, '\n'), 0o644); err != nil {
		slog.Warn("cache write failed", "path", path, "error", err)
	}
}
