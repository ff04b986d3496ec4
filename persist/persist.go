// Package persist stores last-known playback position and rate per media
// key. Persistence is best-effort: every storage failure is logged and
// swallowed, since losing a resume point must never affect playback.
package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/harunobu/miru/logger"
)

// Record is the persisted playback state for one media key
type Record struct {
	Position float64 `json:"t"`
	Rate     float64 `json:"r"`
	SavedAt  int64   `json:"at"`
}

// DefaultMaxEntries bounds the store when no cap is configured
const DefaultMaxEntries = 500

// How long dirty records may sit in memory before being flushed to disk.
// Position updates arrive about once a second; rewriting the file on every
// one of them is pointless churn.
const flushInterval = 2 * time.Second

// Store maps media keys to playback records, bounded by an LRU cap keyed
// on last write. The number of entries never exceeds the cap; the
// oldest-written key is evicted first.
type Store struct {
	path      string
	mu        sync.Mutex
	cache     *lru.Cache[string, Record]
	lastFlush time.Time
	dirty     bool
}

// Open loads (or creates) the store at path. A corrupt or unreadable file
// starts an empty store rather than failing.
func Open(path string, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	cache, err := lru.New[string, Record](maxEntries)
	if err != nil {
		// Only reachable with a non-positive size, which is guarded above
		panic(err)
	}

	s := &Store{path: path, cache: cache}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read playback store", logger.Fields{
				"path":  s.path,
				"error": err.Error(),
			})
		}
		return
	}

	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("Playback store is corrupt, starting empty", logger.Fields{
			"path":  s.path,
			"error": err.Error(),
		})
		return
	}

	// Insert in ascending SavedAt order so the LRU evicts the stalest
	// keys first once the cap is hit.
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return records[keys[i]].SavedAt < records[keys[j]].SavedAt
	})
	for _, k := range keys {
		s.cache.Add(k, records[k])
	}

	logger.Debug("Playback store loaded", logger.Fields{
		"path":    s.path,
		"entries": s.cache.Len(),
	})
}

// Restore returns the stored record for key, if any
func (s *Store) Restore(key string) (Record, bool) {
	if key == "" {
		return Record{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(key)
}

// Save overwrites the record for key and schedules a flush. Save never
// fails outward; a write error only costs the resume point.
func (s *Store) Save(key string, position, rate float64) {
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Add(key, Record{
		Position: position,
		Rate:     rate,
		SavedAt:  time.Now().Unix(),
	})
	s.dirty = true

	if time.Since(s.lastFlush) >= flushInterval {
		s.flushLocked()
	}
}

// Flush forces any dirty records to disk. Call on shutdown.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
}

func (s *Store) flushLocked() {
	if !s.dirty {
		return
	}

	records := make(map[string]Record, s.cache.Len())
	for _, k := range s.cache.Keys() {
		if rec, ok := s.cache.Peek(k); ok {
			records[k] = rec
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		logger.Error("Failed to encode playback store", err, nil)
		return
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		logger.Warn("Failed to create playback store directory", logger.Fields{
			"path":  s.path,
			"error": err.Error(),
		})
		return
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		logger.Warn("Failed to write playback store", logger.Fields{
			"path":  tmp,
			"error": err.Error(),
		})
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		logger.Warn("Failed to replace playback store", logger.Fields{
			"path":  s.path,
			"error": err.Error(),
		})
		return
	}

	s.dirty = false
	s.lastFlush = time.Now()
}

// Len returns the number of stored records
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// DefaultPath returns the store location under dataDir
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "positions.json")
}
