package models

import "strings"

// ItemType is the tracker issue type a work item maps to.
type ItemType string

const (
	TypeStory   ItemType = "Story"
	TypeTask    ItemType = "Task"
	TypeBug     ItemType = "Bug"
	TypeEpic    ItemType = "Epic"
	TypeSubTask ItemType = "Sub-task"
)

// Priority is the work item priority tier.
type Priority string

const (
	PriorityHighest Priority = "Highest"
	PriorityHigh    Priority = "High"
	PriorityMedium  Priority = "Medium"
	PriorityLow     Priority = "Low"
	PriorityLowest  Priority = "Lowest"
)

// priorityRank orders priorities for sorting; lower sorts first.
var priorityRank = map[Priority]int{
	PriorityHighest: 0,
	PriorityHigh:    1,
	PriorityMedium:  2,
	PriorityLow:     3,
	PriorityLowest:  4,
}

// Rank returns the sort rank of a priority. Unknown priorities sort
// with Medium.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return priorityRank[PriorityMedium]
}

// CoerceItemType maps a free-form type string onto one of the four
// canonical creatable types using substring matching. Sub-task is never
// produced by coercion since sub-tasks need a parent to be created.
func CoerceItemType(s string) ItemType {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "story"):
		return TypeStory
	case strings.Contains(lower, "bug"), strings.Contains(lower, "defect"):
		return TypeBug
	case strings.Contains(lower, "epic"):
		return TypeEpic
	default:
		return TypeTask
	}
}

// CoercePriority maps a free-form priority string onto a priority tier.
// Matching is loose substring matching: any "high"/"low" counts, and an
// "est" substring upgrades to the extreme tier, so labels like "very
// high" or "lowest possible" still land on a tier. Anything else is
// Medium.
func CoercePriority(s string) Priority {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "high"):
		if strings.Contains(lower, "est") {
			return PriorityHighest
		}
		return PriorityHigh
	case strings.Contains(lower, "low"):
		if strings.Contains(lower, "est") {
			return PriorityLowest
		}
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// MaxTitleLength is the tracker's summary field limit, in characters.
const MaxTitleLength = 255

// WorkItem is a single generated unit of work destined for the tracker.
// The pipeline never mutates an item after generation; a reviewer may.
type WorkItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ItemType    ItemType `json:"item_type"`
	Labels      []string `json:"labels"`
	Priority    Priority `json:"priority"`
}

// TruncateTitle enforces the tracker summary limit. Truncation counts
// runes, never splitting a multibyte character.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > MaxTitleLength {
		return string(runes[:MaxTitleLength])
	}
	return title
}

// NormalizeLabels lowercases, trims and de-duplicates labels while
// preserving first-seen order.
func NormalizeLabels(labels []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// AnalysisMeta carries summary counts about an analysis run.
type AnalysisMeta struct {
	SectionsFound    int            `json:"sections_found"`
	RawContentLength int            `json:"raw_content_length"`
	ItemTypeCounts   map[string]int `json:"item_type_counts"`
	PriorityCounts   map[string]int `json:"priority_counts"`
}

// AnalysisResult is the finished output of one analysis, persisted
// verbatim into the cache.
type AnalysisResult struct {
	Summary       string       `json:"summary"`
	Items         []WorkItem   `json:"items"`
	CreatedAt     int64        `json:"created_at_epoch_ms"`
	DocumentTitle string       `json:"document_title"`
	Meta          AnalysisMeta `json:"meta"`
}

// BuildMeta computes the item type and priority counts for a result.
func BuildMeta(sectionsFound, rawLength int, items []WorkItem) AnalysisMeta {
	meta := AnalysisMeta{
		SectionsFound:    sectionsFound,
		RawContentLength: rawLength,
		ItemTypeCounts:   make(map[string]int),
		PriorityCounts:   make(map[string]int),
	}
	for _, item := range items {
		meta.ItemTypeCounts[string(item.ItemType)]++
		meta.PriorityCounts[string(item.Priority)]++
	}
	return meta
}

// CacheEntry wraps a stored AnalysisResult with its storage timestamp.
type CacheEntry struct {
	Result   AnalysisResult `json:"result"`
	StoredAt int64          `json:"stored_at_epoch_ms"`
}

// CreatedItem identifies one successfully created tracker item.
type CreatedItem struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
}

// CreationError records one item that the tracker rejected.
type CreationError struct {
	Item    WorkItem `json:"item"`
	Message string   `json:"message"`
}

// CreationOutcome reports a creation batch item by item. It is transient
// and never persisted.
type CreationOutcome struct {
	Created []CreatedItem   `json:"created"`
	Errors  []CreationError `json:"errors"`
}
