package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"backlog-builder/internal/cache"
	"backlog-builder/internal/helpers"
	"backlog-builder/internal/models"
	"backlog-builder/internal/repositories"
)

// CreationService submits a finalized item list to the tracker one item
// at a time, collecting per-item outcomes.
type CreationService struct {
	tracker   repositories.IssueCreator
	inspector repositories.TargetInspector
	cache     *cache.AnalysisCache

	// attempts per item before giving up on it; the loop still moves on
	// to the next item either way.
	attempts   int
	retryDelay time.Duration
}

// NewCreationService creates a new creation service
func NewCreationService(tracker repositories.IssueCreator, inspector repositories.TargetInspector, analysisCache *cache.AnalysisCache) *CreationService {
	return &CreationService{
		tracker:    tracker,
		inspector:  inspector,
		cache:      analysisCache,
		attempts:   3,
		retryDelay: 2 * time.Second,
	}
}

// Submit creates the items in the target collection sequentially, in
// input order. Preconditions are checked before any network call, then
// the target is verified before the first create; past that stage a
// single item's failure never aborts the batch. On completion the cache
// entry for the document/collection pair is invalidated regardless of
// partial failure.
func (s *CreationService) Submit(targetCollectionID, documentID string, items []models.WorkItem) (*models.CreationOutcome, error) {
	if strings.TrimSpace(targetCollectionID) == "" {
		return nil, fmt.Errorf("target collection is required")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no work items to create")
	}
	emptyTitles := 0
	for _, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			emptyTitles++
		}
	}
	if emptyTitles > 0 {
		return nil, fmt.Errorf("%d work item(s) have empty titles", emptyTitles)
	}

	if err := s.verifyTarget(targetCollectionID, items); err != nil {
		return nil, err
	}

	outcome := &models.CreationOutcome{}
	for i, item := range items {
		helpers.PrintProgress(i+1, len(items), fmt.Sprintf("Creating: %s", item.Title))

		resp, err := s.createWithRetry(targetCollectionID, item)
		if err != nil {
			helpers.PrintWarning("Failed to create '%s': %v", item.Title, err)
			outcome.Errors = append(outcome.Errors, models.CreationError{
				Item:    item,
				Message: err.Error(),
			})
			continue
		}

		helpers.PrintSuccess("Created %s: %s", resp.Key, item.Title)
		outcome.Created = append(outcome.Created, models.CreatedItem{
			ExternalID: resp.Key,
			Title:      item.Title,
		})
	}

	// Without a document ID there is no cache entry to invalidate.
	if strings.TrimSpace(documentID) != "" {
		if err := s.cache.Invalidate(documentID, targetCollectionID); err != nil {
			helpers.PrintWarning("Failed to invalidate cached analysis: %v", err)
		}
	}

	return outcome, nil
}

// verifyTarget confirms the project is accessible and that every issue
// type the batch will use exists in it. Runs once per batch, before the
// first create call, so a misconfigured target rejects the whole batch
// instead of failing item by item.
func (s *CreationService) verifyTarget(targetCollectionID string, items []models.WorkItem) error {
	project, err := s.inspector.GetProjectInfo(targetCollectionID)
	if err != nil {
		return fmt.Errorf("project %s is not accessible: %w", targetCollectionID, err)
	}

	available, err := s.inspector.GetIssueTypes(targetCollectionID)
	if err != nil {
		return fmt.Errorf("failed to look up issue types for %s: %w", targetCollectionID, err)
	}
	names := make(map[string]bool, len(available))
	for _, t := range available {
		names[strings.ToLower(t.Name)] = true
	}

	missing := make(map[string]bool)
	for _, item := range items {
		issueType := string(resolveItemType(item.ItemType))
		if !names[strings.ToLower(issueType)] {
			missing[issueType] = true
		}
	}
	if len(missing) > 0 {
		var list []string
		for name := range missing {
			list = append(list, name)
		}
		sort.Strings(list)
		return fmt.Errorf("project %s does not offer issue type(s): %s", project.Key, strings.Join(list, ", "))
	}
	return nil
}

func (s *CreationService) createWithRetry(targetCollectionID string, item models.WorkItem) (*models.JiraResponse, error) {
	issue := buildIssue(targetCollectionID, item)

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		resp, err := s.tracker.CreateIssue(issue)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt < s.attempts {
			time.Sleep(s.retryDelay)
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", s.attempts, lastErr)
}

// resolveItemType is the issue type a work item is actually created
// with. Sub-tasks coerce to Task since a flat batch carries no parent.
func resolveItemType(itemType models.ItemType) models.ItemType {
	if itemType == models.TypeSubTask || itemType == "" {
		return models.CoerceItemType(string(itemType))
	}
	return itemType
}

// buildIssue maps a work item onto the tracker's create request:
// title truncated to the summary limit, labels flattened to a deduped
// non-empty list, description embedded as a single text block.
func buildIssue(targetCollectionID string, item models.WorkItem) *models.JiraIssue {
	itemType := resolveItemType(item.ItemType)

	return &models.JiraIssue{
		Fields: models.JiraFields{
			Project:     models.JiraProject{Key: targetCollectionID},
			Summary:     models.TruncateTitle(strings.TrimSpace(item.Title)),
			Description: item.Description,
			IssueType:   models.JiraIssueType{Name: string(itemType)},
			Labels:      models.NormalizeLabels(item.Labels),
		},
	}
}
