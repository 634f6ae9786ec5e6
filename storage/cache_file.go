package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ratePayload is the on-disk shape of a cached rate: {"rate": 0.92}.
type ratePayload struct {
	Rate *float64 `json:"rate"`
}

// FileRateCache stores each key as <dir>/<key>.json.
type FileRateCache struct {
	dir string
}

// NewFileRateCache returns a cache rooted at dir. The directory is created
// lazily on the first Store.
func NewFileRateCache(dir string) *FileRateCache {
	return &FileRateCache{dir: dir}
}

func (c *FileRateCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Lookup treats a missing file as a miss. An unreadable or malformed file is
// also a miss, reported through the error.
func (c *FileRateCache) Lookup(_ context.Context, key string) (float64, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("file cache: read %q: %w", key, err)
	}

	var p ratePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return 0, false, fmt.Errorf("file cache: decode %q: %w", key, err)
	}
	if p.Rate == nil {
		return 0, false, nil
	}
	return *p.Rate, true, nil
}

func (c *FileRateCache) Store(_ context.Context, key string, rate float64) error {
	return WriteJSON(c.path(key), ratePayload{Rate: &rate})
}

func (c *FileRateCache) Close() error { return nil }
