package cache

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"backlog-builder/internal/models"
)

// flakyStore wraps a MemoryStore with injectable failures.
type flakyStore struct {
	inner    *MemoryStore
	getErr   error
	setErr   error
	setCalls int
}

func (s *flakyStore) Get(key string) (models.CacheEntry, bool, error) {
	if s.getErr != nil {
		return models.CacheEntry{}, false, s.getErr
	}
	return s.inner.Get(key)
}

func (s *flakyStore) Set(key string, entry models.CacheEntry) error {
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	return s.inner.Set(key, entry)
}

func (s *flakyStore) Delete(key string) error {
	return s.inner.Delete(key)
}

func sampleResult(summary string) models.AnalysisResult {
	return models.AnalysisResult{
		Summary:       summary,
		DocumentTitle: "Doc",
		Items:         []models.WorkItem{{Title: "do a thing", ItemType: models.TypeTask, Priority: models.PriorityMedium}},
	}
}

func countingAnalyze(calls *int, result models.AnalysisResult) AnalyzeFunc {
	return func() (models.AnalysisResult, error) {
		*calls++
		return result, nil
	}
}

func TestGetOrAnalyzeCachesWithinTTL(t *testing.T) {
	c := NewAnalysisCache(NewMemoryStore(), time.Hour)

	calls := 0
	first, fromCache, _, err := c.GetOrAnalyze("doc-1", "PROJ", countingAnalyze(&calls, sampleResult("fresh")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromCache {
		t.Error("first call must not come from cache")
	}

	second, fromCache, age, err := c.GetOrAnalyze("doc-1", "PROJ", countingAnalyze(&calls, sampleResult("should not run")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fromCache {
		t.Error("second call within TTL must come from cache")
	}
	if age < 0 {
		t.Errorf("age must be non-negative, got %v", age)
	}
	if calls != 1 {
		t.Errorf("analyze ran %d times, want 1", calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("cached result must be identical to the original")
	}
}

func TestGetOrAnalyzeRecomputesAfterTTL(t *testing.T) {
	c := NewAnalysisCache(NewMemoryStore(), time.Hour)

	calls := 0
	if _, _, _, err := c.GetOrAnalyze("doc-1", "PROJ", countingAnalyze(&calls, sampleResult("first"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Move the clock past the TTL; the stale entry must read as a miss.
	c.now = func() time.Time { return time.Now().Add(61 * time.Minute) }

	result, fromCache, _, err := c.GetOrAnalyze("doc-1", "PROJ", countingAnalyze(&calls, sampleResult("second")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromCache {
		t.Error("expired entry must not be served")
	}
	if result.Summary != "second" || calls != 2 {
		t.Errorf("expected recomputation, got %q after %d calls", result.Summary, calls)
	}
}

func TestGetOrAnalyzeAfterInvalidate(t *testing.T) {
	c := NewAnalysisCache(NewMemoryStore(), time.Hour)

	calls := 0
	if _, _, _, err := c.GetOrAnalyze("doc-1", "PROJ", countingAnalyze(&calls, sampleResult("first"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Invalidate("doc-1", "PROJ"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	_, fromCache, _, err := c.GetOrAnalyze("doc-1", "PROJ", countingAnalyze(&calls, sampleResult("second")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromCache || calls != 2 {
		t.Errorf("invalidated entry must force recomputation (fromCache=%v, calls=%d)", fromCache, calls)
	}
}

func TestGetOrAnalyzeKeyIsolation(t *testing.T) {
	c := NewAnalysisCache(NewMemoryStore(), time.Hour)

	calls := 0
	c.GetOrAnalyze("doc-1", "PROJ", countingAnalyze(&calls, sampleResult("a")))
	c.GetOrAnalyze("doc-1", "OTHER", countingAnalyze(&calls, sampleResult("b")))
	c.GetOrAnalyze("doc-2", "PROJ", countingAnalyze(&calls, sampleResult("c")))

	if calls != 3 {
		t.Errorf("distinct document/collection pairs must not share entries, calls=%d", calls)
	}
}

func TestReadFailureIsAMiss(t *testing.T) {
	store := &flakyStore{inner: NewMemoryStore(), getErr: errors.New("store down")}
	c := NewAnalysisCache(store, time.Hour)

	calls := 0
	result, fromCache, _, err := c.GetOrAnalyze("doc-1", "PROJ", countingAnalyze(&calls, sampleResult("computed")))
	if err != nil {
		t.Fatalf("read failure must not fail the analysis: %v", err)
	}
	if fromCache || result.Summary != "computed" {
		t.Errorf("read failure must behave as a miss, got fromCache=%v", fromCache)
	}
}

func TestWriteFailureSkipsPersistenceOnly(t *testing.T) {
	store := &flakyStore{inner: NewMemoryStore(), setErr: errors.New("disk full")}
	c := NewAnalysisCache(store, time.Hour)

	calls := 0
	result, _, _, err := c.GetOrAnalyze("doc-1", "PROJ", countingAnalyze(&calls, sampleResult("computed")))
	if err != nil {
		t.Fatalf("write failure must not fail the analysis: %v", err)
	}
	if result.Summary != "computed" {
		t.Errorf("analysis result must still be returned, got %q", result.Summary)
	}
	if store.setCalls != 1 {
		t.Errorf("expected one persistence attempt, got %d", store.setCalls)
	}
}

func TestGetHonorsTTL(t *testing.T) {
	c := NewAnalysisCache(NewMemoryStore(), time.Hour)
	c.Put("doc-1", "PROJ", sampleResult("stored"))

	if _, _, found := c.Get("doc-1", "PROJ"); !found {
		t.Fatal("fresh entry must be found")
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, _, found := c.Get("doc-1", "PROJ"); found {
		t.Error("stale entry must be treated as absent")
	}
}

func TestAnalyzeErrorPropagates(t *testing.T) {
	c := NewAnalysisCache(NewMemoryStore(), time.Hour)

	wantErr := errors.New("fetch failed")
	_, _, _, err := c.GetOrAnalyze("doc-1", "PROJ", func() (models.AnalysisResult, error) {
		return models.AnalysisResult{}, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected analyze error to propagate, got %v", err)
	}

	// A failed analysis must not poison the cache.
	if _, _, found := c.Get("doc-1", "PROJ"); found {
		t.Error("failed analysis must not be cached")
	}
}
