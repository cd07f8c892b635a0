package cache

import (
	"time"

	"backlog-builder/internal/models"
)

// DefaultTTL is how long a stored analysis stays valid.
const DefaultTTL = time.Hour

// AnalyzeFunc computes a fresh analysis on a cache miss.
type AnalyzeFunc func() (models.AnalysisResult, error)

// AnalysisCache wraps a Store with the TTL policy for analysis results.
// Entries older than the TTL are treated as absent by readers; they are
// only removed when overwritten or explicitly invalidated.
type AnalysisCache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewAnalysisCache creates a cache with the given TTL; ttl <= 0 falls
// back to DefaultTTL.
func NewAnalysisCache(store Store, ttl time.Duration) *AnalysisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &AnalysisCache{store: store, ttl: ttl, now: time.Now}
}

// GetOrAnalyze returns the stored result for the key when it is still
// fresh, otherwise runs analyze and stores its result. A store read
// failure counts as a miss; a store write failure does not fail the
// analysis, it only skips persistence.
func (c *AnalysisCache) GetOrAnalyze(documentID, targetCollectionID string, analyze AnalyzeFunc) (models.AnalysisResult, bool, time.Duration, error) {
	if entry, age, found := c.lookup(documentID, targetCollectionID); found {
		return entry.Result, true, age, nil
	}

	result, err := analyze()
	if err != nil {
		return models.AnalysisResult{}, false, 0, err
	}
	c.Put(documentID, targetCollectionID, result)
	return result, false, 0, nil
}

// Get returns the stored result and its age when a fresh entry exists.
func (c *AnalysisCache) Get(documentID, targetCollectionID string) (models.AnalysisResult, time.Duration, bool) {
	entry, age, found := c.lookup(documentID, targetCollectionID)
	if !found {
		return models.AnalysisResult{}, 0, false
	}
	return entry.Result, age, true
}

// Put stores a result unconditionally, overwriting any previous entry.
// Write errors are swallowed: persistence is best effort.
func (c *AnalysisCache) Put(documentID, targetCollectionID string, result models.AnalysisResult) {
	entry := models.CacheEntry{
		Result:   result,
		StoredAt: c.now().UnixMilli(),
	}
	_ = c.store.Set(Key(documentID, targetCollectionID), entry)
}

// Invalidate removes the entry for the pair. Called after every
// completed creation batch and on user-requested refresh.
func (c *AnalysisCache) Invalidate(documentID, targetCollectionID string) error {
	return c.store.Delete(Key(documentID, targetCollectionID))
}

func (c *AnalysisCache) lookup(documentID, targetCollectionID string) (models.CacheEntry, time.Duration, bool) {
	entry, found, err := c.store.Get(Key(documentID, targetCollectionID))
	if err != nil || !found {
		return models.CacheEntry{}, 0, false
	}
	age := c.now().Sub(time.UnixMilli(entry.StoredAt))
	if age >= c.ttl {
		return models.CacheEntry{}, 0, false
	}
	return entry, age, true
}
