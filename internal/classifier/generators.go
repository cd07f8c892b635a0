package classifier

import (
	"fmt"
	"strings"

	"backlog-builder/internal/models"
)

const (
	maxFeatureItems     = 5
	maxRequirementItems = 5
	maxFutureItems      = 3
	minFeatureBulletLen = 15
	groupedBulletCount  = 3
	maxBulletTitleLen   = 80
)

// actionVerbs is the set of leading verbs that make a bullet read as an
// instruction already; anything else gets an "Implement" prefix.
var actionVerbs = []string{
	"implement", "add", "create", "build", "design", "develop",
	"set up", "setup", "configure", "integrate", "support", "enable",
	"refactor", "update", "fix", "remove", "migrate", "define",
	"document", "write", "test", "ensure", "provide",
}

func generateSetup(ctx *docContext, section models.Section) []models.WorkItem {
	criteria := section.Bullets
	if len(criteria) == 0 {
		criteria = []string{
			"Repository structure matches the documented layout",
			"Build and development tooling are configured",
		}
	}
	return []models.WorkItem{{
		Title:       models.TruncateTitle(fmt.Sprintf("Set up %s project structure and tooling", ctx.subject)),
		Description: renderDescription(sectionContext(section), criteria),
		ItemType:    models.TypeTask,
		Labels:      models.NormalizeLabels([]string{ctx.subjectLabel(), "setup", string(ctx.docType)}),
		Priority:    models.PriorityHigh,
	}}
}

func generateDataModel(ctx *docContext, section models.Section) []models.WorkItem {
	criteria := make([]string, 0, len(section.Bullets)+1)
	for _, b := range section.Bullets {
		criteria = append(criteria, "Model covers: "+b)
	}
	if len(criteria) == 0 {
		criteria = append(criteria, "Entities and relationships from the document are modeled")
	}
	criteria = append(criteria, "Persistence layer stores and retrieves all modeled entities")

	return []models.WorkItem{{
		Title:       models.TruncateTitle(fmt.Sprintf("Design %s data model and persistence layer", ctx.subject)),
		Description: renderDescription(sectionContext(section), criteria),
		ItemType:    models.TypeStory,
		Labels:      models.NormalizeLabels([]string{ctx.subjectLabel(), "data-model", string(ctx.docType)}),
		Priority:    models.PriorityHigh,
	}}
}

// generateUIComponents emits one grouped item when the section lists
// more than three components, otherwise one item per component bullet.
func generateUIComponents(ctx *docContext, section models.Section) []models.WorkItem {
	bullets := section.Bullets
	if len(bullets) > groupedBulletCount {
		criteria := make([]string, 0, len(bullets))
		for _, b := range bullets {
			criteria = append(criteria, "Component implemented: "+b)
		}
		return []models.WorkItem{{
			Title:       models.TruncateTitle(fmt.Sprintf("Build %s UI components (%s)", ctx.subject, section.Title)),
			Description: renderDescription(sectionContext(section), criteria),
			ItemType:    models.TypeStory,
			Labels:      models.NormalizeLabels([]string{ctx.subjectLabel(), "ui", string(ctx.docType)}),
			Priority:    models.PriorityHigh,
		}}
	}

	items := make([]models.WorkItem, 0, len(bullets))
	for _, b := range bullets {
		items = append(items, models.WorkItem{
			Title:       models.TruncateTitle(bulletTitle(b)),
			Description: renderDescription("From section \""+section.Title+"\": "+b, []string{"Component renders and behaves as described", "Component is wired into the surrounding interface"}),
			ItemType:    models.TypeTask,
			Labels:      models.NormalizeLabels([]string{ctx.subjectLabel(), "ui"}),
			Priority:    models.PriorityMedium,
		})
	}
	return items
}

func generateAPI(ctx *docContext, section models.Section) []models.WorkItem {
	criteria := section.Bullets
	if len(criteria) == 0 {
		criteria = []string{"Documented endpoints are implemented and reachable"}
	}
	criteria = append(criteria, "Error responses follow the documented contract")

	return []models.WorkItem{{
		Title:       models.TruncateTitle(fmt.Sprintf("Implement %s: %s", ctx.subject, section.Title)),
		Description: renderDescription(sectionContext(section), criteria),
		ItemType:    models.TypeTask,
		Labels:      models.NormalizeLabels([]string{ctx.subjectLabel(), "api", string(ctx.docType)}),
		Priority:    models.PriorityMedium,
	}}
}

// generateFeatures turns each substantial bullet into its own item, the
// first at High priority and the rest at Medium. Bullets shorter than
// minFeatureBulletLen characters are noise and skipped.
func generateFeatures(ctx *docContext, section models.Section) []models.WorkItem {
	var items []models.WorkItem
	for _, b := range section.Bullets {
		if len(strings.TrimSpace(b)) < minFeatureBulletLen {
			continue
		}
		if len(items) >= maxFeatureItems {
			break
		}
		priority := models.PriorityMedium
		if len(items) == 0 {
			priority = models.PriorityHigh
		}
		items = append(items, models.WorkItem{
			Title:       models.TruncateTitle(bulletTitle(b)),
			Description: renderDescription("From section \""+section.Title+"\": "+b, []string{"Behavior works as described in the document", "Edge cases around the described flow are covered"}),
			ItemType:    models.TypeStory,
			Labels:      models.NormalizeLabels([]string{ctx.subjectLabel(), "feature", string(ctx.docType)}),
			Priority:    priority,
		})
	}
	return items
}

func generateRequirements(ctx *docContext, section models.Section) []models.WorkItem {
	var items []models.WorkItem
	for _, b := range section.Bullets {
		if len(items) >= maxRequirementItems {
			break
		}
		items = append(items, models.WorkItem{
			Title:       models.TruncateTitle(bulletTitle(b)),
			Description: renderDescription("Requirement from section \""+section.Title+"\": "+b, []string{"Requirement is satisfied and verified", "Verification is captured in an automated test where possible"}),
			ItemType:    models.TypeStory,
			Labels:      models.NormalizeLabels([]string{ctx.subjectLabel(), "requirement", string(ctx.docType)}),
			Priority:    models.PriorityHigh,
		})
	}
	return items
}

func generateFuture(ctx *docContext, section models.Section) []models.WorkItem {
	var items []models.WorkItem
	for _, b := range section.Bullets {
		if len(items) >= maxFutureItems {
			break
		}
		items = append(items, models.WorkItem{
			Title:       models.TruncateTitle(bulletTitle(b)),
			Description: renderDescription("Deferred from section \""+section.Title+"\": "+b, []string{"Scope is refined before implementation starts"}),
			ItemType:    models.TypeTask,
			Labels:      models.NormalizeLabels([]string{ctx.subjectLabel(), "future", "backlog"}),
			Priority:    models.PriorityLow,
		})
	}
	return items
}

// generateGenericBullets is the fallback for sections no rule claimed.
// It only emits when the section carries at least two bullets and a
// title substantial enough to name the work.
func generateGenericBullets(ctx *docContext, section models.Section) []models.WorkItem {
	title := strings.TrimSpace(section.Title)
	if len(section.Bullets) < 2 || len(title) <= 3 {
		return nil
	}
	criteria := make([]string, 0, len(section.Bullets))
	for _, b := range section.Bullets {
		criteria = append(criteria, b)
	}
	return []models.WorkItem{{
		Title:       models.TruncateTitle(bulletTitle(title)),
		Description: renderDescription(sectionContext(section), criteria),
		ItemType:    models.TypeTask,
		Labels:      models.NormalizeLabels([]string{ctx.subjectLabel(), string(ctx.docType)}),
		Priority:    models.PriorityMedium,
	}}
}

// bulletTitle derives an item title from bullet text: strip leading
// list markers, collapse whitespace, truncate at a word boundary, and
// prefix an action verb when the text does not already start with one.
func bulletTitle(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "-*•·0123456789.) ")
	text = strings.Join(strings.Fields(text), " ")
	text = truncateAtWord(text, maxBulletTitleLen)

	if !startsWithActionVerb(text) {
		text = "Implement " + text
	}
	return capitalize(text)
}

func startsWithActionVerb(text string) bool {
	lower := strings.ToLower(text)
	for _, verb := range actionVerbs {
		if strings.HasPrefix(lower, verb+" ") || lower == verb {
			return true
		}
	}
	return false
}

// truncateAtWord cuts text to at most limit characters, backing up to
// the last word boundary and appending an ellipsis. Counts runes so the
// cut never lands inside a multibyte character.
func truncateAtWord(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " .,:;") + "..."
}

func capitalize(text string) string {
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

// sectionContext is the body text a generator quotes into the
// description; bounded so one giant section cannot flood an item.
func sectionContext(section models.Section) string {
	text := strings.TrimSpace(section.BodyText)
	if text == "" {
		text = section.Title
	}
	if runes := []rune(text); len(runes) > 600 {
		text = strings.TrimSpace(string(runes[:600])) + "..."
	}
	return text
}

// renderDescription assembles the fixed two-block item description:
// a Description block followed by an Acceptance Criteria checklist.
// Pure string assembly, no side effects.
func renderDescription(context string, criteria []string) string {
	var sb strings.Builder
	sb.WriteString("### Description\n\n")
	sb.WriteString(context)
	sb.WriteString("\n\n### Acceptance Criteria\n\n")
	for _, c := range criteria {
		sb.WriteString("- [ ] ")
		sb.WriteString(c)
		sb.WriteString("\n")
	}
	return sb.String()
}
