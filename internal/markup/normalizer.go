package markup

import (
	"regexp"
	"strings"
)

var (
	lineBreakRe   = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</tr>|</li>|</h[1-6]>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// entityReplacer decodes the named entities that Confluence storage
// format emits in practice. Anything outside this set is left alone.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&rarr;", "→",
	"&larr;", "←",
	"&ndash;", "–",
	"&mdash;", "—",
)

// StripMarkup reduces a markup fragment to plain text. Block-closing
// constructs become newlines, every remaining tag-like construct is
// removed, known entities are decoded, and runs of 3+ newlines collapse
// to exactly 2. Malformed markup degrades to best-effort text; this
// never fails.
func StripMarkup(fragment string) string {
	text := lineBreakRe.ReplaceAllString(fragment, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)
	text = multiNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
