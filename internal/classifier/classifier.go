package classifier

import (
	"regexp"
	"strings"

	"backlog-builder/internal/models"
)

// DocumentType tags what kind of document is being analyzed. It only
// influences wording and labels on generated items, never which
// generators run.
type DocumentType string

const (
	DocRequirementsSpec DocumentType = "requirements-spec"
	DocArchitecture     DocumentType = "architecture-doc"
	DocAPISpec          DocumentType = "api-spec"
	DocMVPScope         DocumentType = "mvp-scope"
	DocUserStories      DocumentType = "user-stories"
	DocOnboarding       DocumentType = "onboarding-guide"
	DocReleaseNotes     DocumentType = "release-notes"
	DocBugReport        DocumentType = "bug-report"
	DocGeneral          DocumentType = "general"
)

// docTypeRules are checked in priority order; the first type whose
// keyword appears in the lower-cased title+body wins.
var docTypeRules = []struct {
	docType  DocumentType
	keywords []string
}{
	{DocRequirementsSpec, []string{"requirements", "specification", "functional spec"}},
	{DocArchitecture, []string{"architecture", "technical design", "system design"}},
	{DocAPISpec, []string{"api reference", "api spec", "endpoint", "rest api"}},
	{DocMVPScope, []string{"mvp", "minimum viable"}},
	{DocUserStories, []string{"user stories", "user story", "persona"}},
	{DocOnboarding, []string{"onboarding", "getting started", "setup guide"}},
	{DocReleaseNotes, []string{"release notes", "changelog", "what's new"}},
	{DocBugReport, []string{"bug report", "defect", "steps to reproduce"}},
}

// subjectPatterns are tried in order against the document title; the
// first capturing match names the subject.
var subjectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.+?)\s+(?:app|application|project|platform|spec|specification|design)\b`),
	regexp.MustCompile(`(?i)(?:for|about)\s+(?:the\s+)?(.+?)(?:\s+(?:app|application|project))?$`),
}

// nonActionableKeywords mark sections that never yield work items.
var nonActionableKeywords = []string{
	"overview", "introduction", "background", "summary",
	"table of contents", "version history",
}

// sectionRule pairs a title predicate with the generator it triggers.
// Rules are evaluated in fixed priority order, first match wins.
type sectionRule struct {
	name     string
	keywords []string
	generate func(ctx *docContext, section models.Section) []models.WorkItem
}

var sectionRules = []sectionRule{
	{"setup", []string{"structure", "folder", "architecture", "setup", "tooling"}, generateSetup},
	{"data-model", []string{"data", "model", "storage", "database", "persistence"}, generateDataModel},
	{"ui", []string{"component", "ui", "interface", "view", "screen"}, generateUIComponents},
	{"api", []string{"api", "endpoint", "service", "integration"}, generateAPI},
	{"feature", []string{"feature", "functionality", "capability"}, generateFeatures},
	{"requirement", []string{"requirement", "scope"}, generateRequirements},
	{"future", []string{"future", "roadmap", "backlog", "nice to have"}, generateFuture},
}

// docContext carries document-level facts into the generators.
type docContext struct {
	docType DocumentType
	subject string
}

// subjectLabel is the lowercase-hyphenated form of the subject used on
// item labels.
func (c *docContext) subjectLabel() string {
	return strings.ToLower(strings.Join(strings.Fields(c.subject), "-"))
}

// Classify runs the full rule pipeline over a parsed document and
// returns raw work items. Every analyzed document yields at least one
// item: if no section produces anything, a single review story covering
// the whole document is synthesized.
func Classify(doc models.Document, targetCollectionID string) []models.WorkItem {
	ctx := &docContext{
		docType: DetectDocumentType(doc),
		subject: ExtractSubject(doc.Title),
	}

	var items []models.WorkItem
	for _, section := range doc.Sections {
		items = append(items, classifySection(ctx, section)...)
	}

	if len(items) == 0 {
		items = append(items, fallbackItem(ctx, doc))
	}
	return items
}

// classifySection dispatches one section through the rule table.
func classifySection(ctx *docContext, section models.Section) []models.WorkItem {
	titleLower := strings.ToLower(section.Title)
	for _, kw := range nonActionableKeywords {
		if strings.Contains(titleLower, kw) {
			return nil
		}
	}

	for _, rule := range sectionRules {
		if containsAny(titleLower, rule.keywords) {
			return rule.generate(ctx, section)
		}
	}

	if len(section.Bullets) >= 1 {
		return generateGenericBullets(ctx, section)
	}
	return nil
}

// DetectDocumentType tests the lower-cased document title and section
// body text against the fixed keyword sets, first match wins. Section
// titles are not part of the haystack; they drive generator dispatch
// instead.
func DetectDocumentType(doc models.Document) DocumentType {
	var sb strings.Builder
	sb.WriteString(doc.Title)
	for _, s := range doc.Sections {
		sb.WriteString(" ")
		sb.WriteString(s.BodyText)
	}
	haystack := strings.ToLower(sb.String())

	for _, rule := range docTypeRules {
		if containsAny(haystack, rule.keywords) {
			return rule.docType
		}
	}
	return DocGeneral
}

// ExtractSubject pulls the subject name out of a document title. It
// tries the title patterns in order, falls back to the first
// whitespace-delimited token, and defaults to "Project".
func ExtractSubject(title string) string {
	title = strings.TrimSpace(title)
	for _, p := range subjectPatterns {
		if m := p.FindStringSubmatch(title); m != nil {
			if subject := strings.TrimSpace(m[1]); subject != "" {
				return subject
			}
		}
	}
	if fields := strings.Fields(title); len(fields) > 0 {
		return strings.Trim(fields[0], ".,:;—–-")
	}
	return "Project"
}

// fallbackItem summarizes the whole document into one review story so
// an analysis never comes back empty.
func fallbackItem(ctx *docContext, doc models.Document) models.WorkItem {
	var sb strings.Builder
	for _, s := range doc.Sections {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s.BodyText)
	}
	excerpt := sb.String()
	if runes := []rune(excerpt); len(runes) > 500 {
		excerpt = string(runes[:500])
	}
	excerpt = strings.TrimSpace(excerpt)
	if excerpt == "" {
		excerpt = "The document has no extractable content; review the source page directly."
	}

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = ctx.subject
	}
	return models.WorkItem{
		Title:       models.TruncateTitle("Review and implement: " + title),
		Description: renderDescription(excerpt, []string{"Review the source document", "Break the work into concrete tasks", "Implement and verify the documented behavior"}),
		ItemType:    models.TypeStory,
		Labels:      models.NormalizeLabels([]string{ctx.subjectLabel(), string(ctx.docType), "needs-review"}),
		Priority:    models.PriorityMedium,
	}
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
