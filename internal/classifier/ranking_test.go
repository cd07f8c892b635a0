package classifier

import (
	"fmt"
	"reflect"
	"testing"

	"backlog-builder/internal/models"
)

func item(title string, priority models.Priority) models.WorkItem {
	return models.WorkItem{Title: title, ItemType: models.TypeTask, Priority: priority}
}

func TestRankAndDedupeSortsByPriority(t *testing.T) {
	items := []models.WorkItem{
		item("low thing", models.PriorityLow),
		item("highest thing", models.PriorityHighest),
		item("medium thing", models.PriorityMedium),
		item("high thing", models.PriorityHigh),
		item("lowest thing", models.PriorityLowest),
	}

	out := RankAndDedupe(items)
	want := []models.Priority{
		models.PriorityHighest, models.PriorityHigh, models.PriorityMedium,
		models.PriorityLow, models.PriorityLowest,
	}
	for i, p := range want {
		if out[i].Priority != p {
			t.Errorf("position %d priority = %s, want %s", i, out[i].Priority, p)
		}
	}
}

func TestRankAndDedupeStableWithinTier(t *testing.T) {
	items := []models.WorkItem{
		item("first high", models.PriorityHigh),
		item("second high", models.PriorityHigh),
		item("third high", models.PriorityHigh),
	}

	out := RankAndDedupe(items)
	if out[0].Title != "first high" || out[1].Title != "second high" || out[2].Title != "third high" {
		t.Errorf("ties must preserve emission order, got %v", titles(out))
	}
}

func TestRankAndDedupeDropsDuplicateKeys(t *testing.T) {
	items := []models.WorkItem{
		item("Implement login!", models.PriorityHigh),
		item("implement LOGIN", models.PriorityLow),
		item("something else", models.PriorityMedium),
	}

	out := RankAndDedupe(items)
	if len(out) != 2 {
		t.Fatalf("expected 2 items after dedupe, got %d: %v", len(out), titles(out))
	}
	// The higher-priority duplicate survives because it ranks first.
	if out[0].Title != "Implement login!" {
		t.Errorf("expected first occurrence in ranked order to win, got %q", out[0].Title)
	}

	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if NormalizedTitleKey(out[i].Title) == NormalizedTitleKey(out[j].Title) {
				t.Errorf("output items %d and %d share a normalized key", i, j)
			}
		}
	}
}

func TestRankAndDedupeCapsAtTen(t *testing.T) {
	var items []models.WorkItem
	for i := 0; i < 25; i++ {
		items = append(items, item(fmt.Sprintf("unique item number %d", i), models.PriorityMedium))
	}

	out := RankAndDedupe(items)
	if len(out) != MaxResultItems {
		t.Errorf("expected %d items, got %d", MaxResultItems, len(out))
	}
}

func TestRankAndDedupeIdempotent(t *testing.T) {
	items := []models.WorkItem{
		item("alpha work", models.PriorityLow),
		item("beta work", models.PriorityHighest),
		item("beta WORK", models.PriorityMedium),
		item("gamma work", models.PriorityMedium),
	}

	once := RankAndDedupe(items)
	twice := RankAndDedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("RankAndDedupe is not idempotent:\n once: %v\ntwice: %v", titles(once), titles(twice))
	}
}

func TestNormalizedTitleKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Implement Login!", "implementlogin"},
		{"  spaces   and, punctuation. ", "spacesandpunctuation"},
		{"ABC123", "abc123"},
	}
	for _, tt := range tests {
		if got := NormalizedTitleKey(tt.input); got != tt.expected {
			t.Errorf("NormalizedTitleKey(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}

	long := NormalizedTitleKey("this title is long enough that its normalized key gets truncated somewhere")
	if len(long) != 40 {
		t.Errorf("expected 40-char key, got %d", len(long))
	}
}

func titles(items []models.WorkItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}
