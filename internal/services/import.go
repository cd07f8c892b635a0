package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"backlog-builder/internal/cache"
	"backlog-builder/internal/classifier"
	"backlog-builder/internal/models"
)

// ImportService accepts a pre-classified item batch produced outside
// the pipeline (for example by an external generation agent), normalizes
// it, and stores it as an AnalysisResult without running the classifier.
type ImportService struct {
	cache *cache.AnalysisCache
}

// NewImportService creates a new import service
func NewImportService(analysisCache *cache.AnalysisCache) *ImportService {
	return &ImportService{cache: analysisCache}
}

// ExternalItem is the loosely typed shape an external batch may use.
// Type and priority are free-form strings; labels may arrive as an
// array or a comma-separated string.
type ExternalItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	ItemType    string    `json:"item_type"`
	IssueType   string    `json:"issue_type"`
	Priority    string    `json:"priority"`
	Labels      LabelList `json:"labels"`
}

// LabelList decodes either a JSON string (split on commas) or an array
// of strings.
type LabelList []string

func (l *LabelList) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*l = strings.Split(asString, ",")
		return nil
	}
	var asSlice []string
	if err := json.Unmarshal(data, &asSlice); err != nil {
		return fmt.Errorf("labels must be a string or an array of strings")
	}
	*l = asSlice
	return nil
}

// ParseBatch decodes a payload that is either a bare item array or an
// object wrapping one under "items".
func ParseBatch(payload []byte) ([]ExternalItem, error) {
	var items []ExternalItem
	if err := json.Unmarshal(payload, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		Items []ExternalItem `json:"items"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("malformed item batch: expected an item array or an object with an \"items\" array: %w", err)
	}
	return wrapped.Items, nil
}

// NormalizeItems converts external items into work items: titles
// trimmed and truncated, types and priorities coerced, labels
// normalized. Entries without any usable title are dropped.
func NormalizeItems(external []ExternalItem) []models.WorkItem {
	var items []models.WorkItem
	for _, e := range external {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = strings.TrimSpace(e.Summary)
		}
		if title == "" {
			continue
		}

		typeSource := e.Type
		if typeSource == "" {
			typeSource = e.ItemType
		}
		if typeSource == "" {
			typeSource = e.IssueType
		}

		items = append(items, models.WorkItem{
			Title:       models.TruncateTitle(title),
			Description: e.Description,
			ItemType:    models.CoerceItemType(typeSource),
			Labels:      models.NormalizeLabels(e.Labels),
			Priority:    models.CoercePriority(e.Priority),
		})
	}
	return items
}

// Import parses, normalizes, and stores an external batch as the
// analysis for the document/collection pair. The items pass through
// ranking so the stored result honors the same ordering, dedup, and
// size bound as a classified analysis.
func (s *ImportService) Import(documentID, documentTitle, targetCollectionID string, payload []byte) (*models.AnalysisResult, error) {
	external, err := ParseBatch(payload)
	if err != nil {
		return nil, err
	}

	items := classifier.RankAndDedupe(NormalizeItems(external))
	if len(items) == 0 {
		return nil, fmt.Errorf("item batch contains no usable items")
	}

	result := models.AnalysisResult{
		Summary:       fmt.Sprintf("Imported %d work items for %s", len(items), documentTitle),
		Items:         items,
		CreatedAt:     time.Now().UnixMilli(),
		DocumentTitle: documentTitle,
		Meta:          models.BuildMeta(0, len(payload), items),
	}

	s.cache.Put(documentID, targetCollectionID, result)
	return &result, nil
}
