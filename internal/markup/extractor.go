package markup

import (
	"regexp"
	"strings"

	"backlog-builder/internal/models"
)

const syntheticSectionTitle = "Main Content"

var (
	headingRe  = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	listItemRe = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
	orderedRe  = regexp.MustCompile(`(?is)<ol[^>]*>(.*?)</ol>`)
	preRe      = regexp.MustCompile(`(?is)<pre[^>]*>(.*?)</pre>`)
	codeRe     = regexp.MustCompile(`(?is)<code[^>]*>(.*?)</code>`)
	tableRe    = regexp.MustCompile(`(?is)<table[^>]*>(.*?)</table>`)
	rowRe      = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellRe     = regexp.MustCompile(`(?is)<t[hd][^>]*>(.*?)</t[hd]>`)
)

// BuildDocument parses a markup body into a Document with the given
// title. See ExtractSections for the splitting rules.
func BuildDocument(title, markupBody string) models.Document {
	return models.Document{
		Title:    title,
		Sections: ExtractSections(markupBody),
	}
}

// ExtractSections splits a markup body into sections at heading
// boundaries, in document order. Each heading owns the markup between
// its end and the next heading's start. A body with no headings becomes
// a single synthetic level-1 section.
func ExtractSections(markupBody string) []models.Section {
	matches := headingRe.FindAllStringSubmatchIndex(markupBody, -1)
	if len(matches) == 0 {
		return []models.Section{parseSection(1, syntheticSectionTitle, markupBody)}
	}

	sections := make([]models.Section, 0, len(matches))
	for i, m := range matches {
		level := int(markupBody[m[2]] - '0')
		title := StripMarkup(markupBody[m[4]:m[5]])

		bodyStart := m[1]
		bodyEnd := len(markupBody)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		sections = append(sections, parseSection(level, title, markupBody[bodyStart:bodyEnd]))
	}
	return sections
}

// parseSection extracts the structured parts of one section body span.
func parseSection(level int, title, span string) models.Section {
	numbered, remainder := extractNumbered(span)
	return models.Section{
		Level:         level,
		Title:         title,
		BodyText:      StripMarkup(span),
		Bullets:       extractListItems(remainder),
		NumberedItems: numbered,
		CodeBlocks:    extractCode(span),
		Tables:        extractTables(span),
	}
}

// extractNumbered pulls list items out of ordered lists and returns the
// span with those lists removed, so the remaining list items count as
// bullets.
func extractNumbered(span string) (items []string, remainder string) {
	for _, block := range orderedRe.FindAllStringSubmatch(span, -1) {
		items = append(items, extractListItems(block[1])...)
	}
	return items, orderedRe.ReplaceAllString(span, "")
}

func extractListItems(span string) []string {
	var items []string
	for _, m := range listItemRe.FindAllStringSubmatch(span, -1) {
		if text := StripMarkup(m[1]); text != "" {
			items = append(items, text)
		}
	}
	return items
}

// extractCode collects pre blocks first, then inline code outside them,
// discarding empties.
func extractCode(span string) []string {
	var blocks []string
	for _, m := range preRe.FindAllStringSubmatch(span, -1) {
		if text := StripMarkup(m[1]); text != "" {
			blocks = append(blocks, text)
		}
	}
	outside := preRe.ReplaceAllString(span, "")
	for _, m := range codeRe.FindAllStringSubmatch(outside, -1) {
		if text := StripMarkup(m[1]); text != "" {
			blocks = append(blocks, text)
		}
	}
	return blocks
}

// extractTables turns each table into rows of cell texts, header and
// data cells alike. Rows yielding zero cells are discarded.
func extractTables(span string) [][][]string {
	var tables [][][]string
	for _, tm := range tableRe.FindAllStringSubmatch(span, -1) {
		var rows [][]string
		for _, rm := range rowRe.FindAllStringSubmatch(tm[1], -1) {
			var cells []string
			for _, cm := range cellRe.FindAllStringSubmatch(rm[1], -1) {
				cells = append(cells, strings.TrimSpace(StripMarkup(cm[1])))
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		}
		if len(rows) > 0 {
			tables = append(tables, rows)
		}
	}
	return tables
}
