package classifier

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backlog-builder/internal/markup"
	"backlog-builder/internal/models"
)

func TestClassifyDataModelSection(t *testing.T) {
	doc := models.Document{
		Title: "Payments MVP — Mobile Wallet",
		Sections: []models.Section{{
			Level:   2,
			Title:   "Data Model",
			Bullets: []string{"id: string", "balance: number"},
		}},
	}

	items := Classify(doc, "PROJ")
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, models.TypeStory, item.ItemType)
	assert.Equal(t, models.PriorityHigh, item.Priority)
	assert.Contains(t, strings.ToLower(item.Title), "model")
	assert.Contains(t, strings.ToLower(item.Title), "persistence")
	assert.Contains(t, item.Labels, "payments")
}

func TestClassifySkipsNonActionableSections(t *testing.T) {
	doc := models.Document{
		Title: "Checkout Redesign",
		Sections: []models.Section{
			{Title: "Overview", Bullets: []string{"context bullet one", "context bullet two"}},
			{Title: "Version History", BodyText: "1.0 initial"},
		},
	}

	items := Classify(doc, "PROJ")
	// Both sections are non-actionable, so the whole-document fallback fires.
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Title, "Review and implement")
	assert.Equal(t, models.TypeStory, items[0].ItemType)
}

func TestClassifyEmptyDocumentFallback(t *testing.T) {
	doc := markup.BuildDocument("", "")
	items := Classify(doc, "PROJ")

	require.Len(t, items, 1)
	assert.Contains(t, items[0].Title, "Review and implement")
	assert.NotEmpty(t, items[0].Description)
}

func TestClassifyFirstMatchingRuleWins(t *testing.T) {
	// "Data Architecture" matches both the setup rule (architecture) and
	// the data-model rule (data); setup is earlier in the table.
	doc := models.Document{
		Title: "Ledger Service Design",
		Sections: []models.Section{{
			Title:   "Data Architecture",
			Bullets: []string{"ledger entries are immutable"},
		}},
	}

	items := Classify(doc, "PROJ")
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Title, "project structure and tooling")
}

func TestClassifyFeatureSection(t *testing.T) {
	doc := models.Document{
		Title: "Wallet App Spec",
		Sections: []models.Section{{
			Title: "Features",
			Bullets: []string{
				"ok",
				"Allow users to top up their wallet from a linked bank account",
				"Display a transaction history with infinite scroll",
				"Send push notifications on incoming transfers",
			},
		}},
	}

	items := Classify(doc, "PROJ")
	require.Len(t, items, 3, "short bullet must be skipped")
	assert.Equal(t, models.PriorityHigh, items[0].Priority)
	assert.Equal(t, models.PriorityMedium, items[1].Priority)
	assert.Equal(t, models.PriorityMedium, items[2].Priority)
	for _, item := range items {
		assert.Equal(t, models.TypeStory, item.ItemType)
		assert.Contains(t, item.Description, "Acceptance Criteria")
	}
}

func TestClassifyFeatureSectionCapped(t *testing.T) {
	bullets := make([]string, 8)
	for i := range bullets {
		bullets[i] = strings.Repeat("x", 10) + " feature number " + string(rune('a'+i))
	}
	doc := models.Document{
		Title:    "Big Spec",
		Sections: []models.Section{{Title: "Functionality", Bullets: bullets}},
	}

	items := Classify(doc, "PROJ")
	assert.Len(t, items, 5)
}

func TestClassifyUIComponentsGrouping(t *testing.T) {
	grouped := models.Document{
		Title: "Dashboard App",
		Sections: []models.Section{{
			Title:   "UI Components",
			Bullets: []string{"nav bar", "side panel", "chart widget", "settings modal"},
		}},
	}
	items := Classify(grouped, "PROJ")
	require.Len(t, items, 1, "more than 3 bullets should group into one item")
	assert.Equal(t, models.PriorityHigh, items[0].Priority)

	perBullet := models.Document{
		Title: "Dashboard App",
		Sections: []models.Section{{
			Title:   "UI Components",
			Bullets: []string{"nav bar", "side panel"},
		}},
	}
	items = Classify(perBullet, "PROJ")
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, models.PriorityMedium, item.Priority)
	}
}

func TestClassifyFutureSection(t *testing.T) {
	doc := models.Document{
		Title: "Roadmap Doc",
		Sections: []models.Section{{
			Title:   "Future Work",
			Bullets: []string{"multi currency", "dark mode", "offline support", "widget api"},
		}},
	}

	items := Classify(doc, "PROJ")
	require.Len(t, items, 3, "future generator caps at 3")
	for _, item := range items {
		assert.Equal(t, models.PriorityLow, item.Priority)
		assert.Contains(t, item.Labels, "backlog")
	}
}

func TestClassifyGenericBulletFallback(t *testing.T) {
	doc := models.Document{
		Title: "Ops Notes",
		Sections: []models.Section{{
			Title:   "Deployment Checklist",
			Bullets: []string{"rotate credentials", "verify backups"},
		}},
	}

	items := Classify(doc, "PROJ")
	require.Len(t, items, 1)
	assert.Equal(t, models.PriorityMedium, items[0].Priority)
	assert.Contains(t, items[0].Description, "rotate credentials")
}

func TestClassifyGenericNeedsTwoBullets(t *testing.T) {
	doc := models.Document{
		Title: "Ops Notes",
		Sections: []models.Section{{
			Title:   "Deployment Checklist",
			Bullets: []string{"rotate credentials"},
		}},
	}

	items := Classify(doc, "PROJ")
	// One bullet is not enough for the generic analyzer, so the document
	// falls through to the review story.
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Title, "Review and implement")
}

func TestDetectDocumentType(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		body     string
		expected DocumentType
	}{
		{"requirements wins first", "System Requirements", "the architecture is layered", DocRequirementsSpec},
		{"architecture", "Service Architecture", "", DocArchitecture},
		{"mvp", "Wallet MVP Scope", "", DocMVPScope},
		{"release notes", "What's new in 2.0", "", DocReleaseNotes},
		{"default", "Random Notes", "nothing special", DocGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := models.Document{
				Title:    tt.title,
				Sections: []models.Section{{Title: "Main Content", BodyText: tt.body}},
			}
			assert.Equal(t, tt.expected, DetectDocumentType(doc))
		})
	}
}

func TestDetectDocumentTypeIgnoresSectionTitles(t *testing.T) {
	// Section titles drive generator dispatch only; the type haystack is
	// the document title plus section body text.
	doc := models.Document{
		Title:    "Random Notes",
		Sections: []models.Section{{Title: "Architecture", BodyText: "nothing special here"}},
	}
	assert.Equal(t, DocGeneral, DetectDocumentType(doc))
}

func TestExtractSubject(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Mobile Wallet app", "Mobile Wallet"},
		{"Spec for the payments service", "payments service"},
		{"Checkout Flow Design", "Checkout Flow"},
		{"Payments MVP — Mobile Wallet", "Payments"},
		{"", "Project"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractSubject(tt.title))
		})
	}
}

func TestBulletTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"action verb kept", "add login button", "Add login button"},
		{"prefix applied", "users can reset passwords", "Implement users can reset passwords"},
		{"marker stripped", "- support SSO login flows", "Support SSO login flows"},
		{"whitespace collapsed", "build   the   thing", "Build the thing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, bulletTitle(tt.input))
		})
	}
}

func TestBulletTitleTruncation(t *testing.T) {
	long := "create a very long bullet describing an elaborate feature that just keeps going and going beyond any limit"
	got := bulletTitle(long)
	assert.True(t, strings.HasSuffix(got, "..."), "expected ellipsis, got %q", got)
	assert.LessOrEqual(t, len(got), maxBulletTitleLen+3)
	assert.NotContains(t, strings.TrimSuffix(got, "..."), "  ")
}

func TestBulletTitleTruncationMultibyte(t *testing.T) {
	long := "update the currency handling so amounts display correctly — € and £ symbols included everywhere"
	got := bulletTitle(long)
	assert.True(t, utf8.ValidString(got), "truncation must not split a multibyte character: %q", got)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), maxBulletTitleLen+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestFallbackExcerptMultibyte(t *testing.T) {
	doc := models.Document{
		Title:    "Notes",
		Sections: []models.Section{{Title: "Main Content", BodyText: strings.Repeat("—", 600)}},
	}
	items := Classify(doc, "PROJ")
	require.Len(t, items, 1)
	assert.True(t, utf8.ValidString(items[0].Description))
}

func TestSectionContextMultibyte(t *testing.T) {
	section := models.Section{Title: "Context", BodyText: strings.Repeat("—", 700)}
	got := sectionContext(section)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 603)
}

func TestRenderDescriptionBlocks(t *testing.T) {
	desc := renderDescription("some context", []string{"first", "second"})
	assert.Contains(t, desc, "### Description")
	assert.Contains(t, desc, "some context")
	assert.Contains(t, desc, "### Acceptance Criteria")
	assert.Contains(t, desc, "- [ ] first")
	assert.Contains(t, desc, "- [ ] second")
}
