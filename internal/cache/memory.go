package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"backlog-builder/internal/models"
)

// MemoryStore keeps entries in process memory. Expiry is left to the
// analysis cache's TTL check, so entries are stored without their own
// expiration and deletion stays lazy.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an in-memory store. Safe for concurrent use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(key string) (models.CacheEntry, bool, error) {
	value, found := s.cache.Get(key)
	if !found {
		return models.CacheEntry{}, false, nil
	}
	entry, ok := value.(models.CacheEntry)
	if !ok {
		return models.CacheEntry{}, false, nil
	}
	return entry, true, nil
}

func (s *MemoryStore) Set(key string, entry models.CacheEntry) error {
	s.cache.Set(key, entry, gocache.NoExpiration)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}
