package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// PurgeHTTPCacheByAge removes HTTP cache entries whose SavedAt is older than
// maxAge and returns how many were removed.
func PurgeHTTPCacheByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".meta.json") {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var e HTTPEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil
		}
		if now.Sub(e.SavedAt) <= maxAge {
			return nil
		}
		removed++
		removeHTTPEntry(strings.TrimSuffix(path, ".meta.json"))
		return nil
	})
	return removed, err
}

// PurgeLLMCacheByAge removes LLM cache entries older than maxAge based on file
// modification time.
func PurgeLLMCacheByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := llmEntries(dir)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	removed := 0
	for _, e := range entries {
		if now.Sub(e.used) > maxAge {
			_ = os.Remove(e.base)
			removed++
		}
	}
	return removed, nil
}

// EnforceHTTPCacheLimits evicts least recently used HTTP entries until the
// cache holds at most maxCount entries and maxBytes body bytes. A zero limit
// is not enforced.
func EnforceHTTPCacheLimits(dir string, maxBytes int64, maxCount int) (int, error) {
	entries, err := httpEntries(dir)
	if err != nil {
		return 0, err
	}
	return evict(entries, maxBytes, maxCount, removeHTTPEntry), nil
}

// EnforceLLMCacheLimits is EnforceHTTPCacheLimits for the LLM cache.
func EnforceLLMCacheLimits(dir string, maxBytes int64, maxCount int) (int, error) {
	entries, err := llmEntries(dir)
	if err != nil {
		return 0, err
	}
	return evict(entries, maxBytes, maxCount, func(p string) { _ = os.Remove(p) }), nil
}

type entry struct {
	base string
	size int64
	used time.Time
}

func removeHTTPEntry(base string) {
	_ = os.Remove(base + ".meta.json")
	_ = os.Remove(base + ".body")
}

func httpEntries(dir string) ([]entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".body") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		base := filepath.Join(dir, strings.TrimSuffix(f.Name(), ".body"))
		out = append(out, entry{base: base, size: info.Size(), used: info.ModTime()})
	}
	return out, nil
}

func llmEntries(dir string) ([]entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []entry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".meta.json") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		out = append(out, entry{base: filepath.Join(dir, name), size: info.Size(), used: info.ModTime()})
	}
	return out, nil
}

// evict removes the oldest entries until both limits hold.
func evict(entries []entry, maxBytes int64, maxCount int, remove func(string)) int {
	sort.Slice(entries, func(i, j int) bool { return entries[i].used.Before(entries[j].used) })
	var total int64
	for _, e := range entries {
		total += e.size
	}
	count := len(entries)
	removed := 0
	for _, e := range entries {
		overCount := maxCount > 0 && count > maxCount
		overBytes := maxBytes > 0 && total > maxBytes
		if !overCount && !overBytes {
			break
		}
		remove(e.base)
		count--
		total -= e.size
		removed++
	}
	return removed
}
