package models

// Document is the parsed form of a source page, built once per analysis.
type Document struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section is a heading plus the content beneath it up to the next heading.
type Section struct {
	Level         int          `json:"level"`
	Title         string       `json:"title"`
	BodyText      string       `json:"body_text"`
	Bullets       []string     `json:"bullets"`
	NumberedItems []string     `json:"numbered_items"`
	CodeBlocks    []string     `json:"code_blocks"`
	Tables        [][][]string `json:"tables"`
}

// SourceDocument is the raw page as returned by a document source.
type SourceDocument struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	MarkupBody string `json:"markup_body"`
}
