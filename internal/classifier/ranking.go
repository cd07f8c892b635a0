package classifier

import (
	"sort"
	"strings"

	"backlog-builder/internal/models"
)

const (
	// MaxResultItems bounds an analysis result regardless of how many
	// raw items the generators emitted.
	MaxResultItems = 10

	normalizedKeyLen = 40
)

// RankAndDedupe orders items by priority tier (stable, so ties keep
// generator emission order), drops items whose normalized title key was
// already seen, and caps the result. Applying it to its own output
// returns the same sequence.
func RankAndDedupe(items []models.WorkItem) []models.WorkItem {
	ranked := make([]models.WorkItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority.Rank() < ranked[j].Priority.Rank()
	})

	seen := make(map[string]bool)
	out := make([]models.WorkItem, 0, len(ranked))
	for _, item := range ranked {
		key := NormalizedTitleKey(item.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) == MaxResultItems {
			break
		}
	}
	return out
}

// NormalizedTitleKey is the duplicate-detection key for a title:
// lower-cased, non-alphanumeric characters removed, truncated to 40
// characters.
func NormalizedTitleKey(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	key := sb.String()
	if len(key) > normalizedKeyLen {
		key = key[:normalizedKeyLen]
	}
	return key
}
