package repositories

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"backlog-builder/internal/helpers"
	"backlog-builder/internal/models"
)

// FileSource reads a local markdown file and renders it to markup so it
// flows through the same extraction pipeline as a fetched page. The
// document ID is the file path.
type FileSource struct {
	md goldmark.Markdown
}

// NewFileSource creates a markdown file source with GFM tables enabled.
func NewFileSource() *FileSource {
	return &FileSource{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Table),
		),
	}
}

// FetchDocument renders the markdown file at path into markup. The
// title comes from the first top-level heading, falling back to the
// file name.
func (s *FileSource) FetchDocument(path string) (*models.SourceDocument, error) {
	content, err := helpers.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	return &models.SourceDocument{
		ID:         path,
		Title:      markdownTitle(content, path),
		MarkupBody: buf.String(),
	}, nil
}

func markdownTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
