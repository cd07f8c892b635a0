package cache

import "backlog-builder/internal/models"

// Store is the narrow key-value surface the analysis cache needs. No
// transactional guarantees: concurrent writers race and the last whole
// value wins, which is acceptable since entries are always complete
// overwrites.
type Store interface {
	Get(key string) (models.CacheEntry, bool, error)
	Set(key string, entry models.CacheEntry) error
	Delete(key string) error
}

// Key builds the composite cache key for a document/collection pair.
func Key(documentID, targetCollectionID string) string {
	return documentID + ":" + targetCollectionID
}
