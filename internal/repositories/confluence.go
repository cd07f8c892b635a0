package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"backlog-builder/internal/config"
	"backlog-builder/internal/models"
)

// Fetch failure modes the pipeline must distinguish for the user.
var (
	ErrDocumentNotFound  = errors.New("document not found: check the page ID")
	ErrDocumentForbidden = errors.New("access to the document was denied: check credentials and permissions")
)

// DocumentSource supplies raw markup for a document identified by ID.
type DocumentSource interface {
	FetchDocument(documentID string) (*models.SourceDocument, error)
}

// ConfluenceRepository fetches pages from the Confluence REST API.
type ConfluenceRepository struct {
	config *config.ConfluenceConfig
	client *http.Client
}

// NewConfluenceRepository creates a new Confluence repository
func NewConfluenceRepository(confluenceConfig *config.ConfluenceConfig) *ConfluenceRepository {
	return &ConfluenceRepository{
		config: confluenceConfig,
		client: &http.Client{
			Timeout: time.Duration(confluenceConfig.TimeoutSeconds) * time.Second,
		},
	}
}

// contentResponse is the subset of the content API response we read.
type contentResponse struct {
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
}

// FetchDocument retrieves a page's title and storage-format body.
// Not-found, forbidden, and other failures each surface distinctly and
// are never retried.
func (r *ConfluenceRepository) FetchDocument(documentID string) (*models.SourceDocument, error) {
	endpoint := fmt.Sprintf("%s/wiki/rest/api/content/%s?expand=body.storage",
		r.config.BaseURL, url.PathEscape(documentID))

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(r.config.Email, r.config.APIToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document source unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w (id %s)", ErrDocumentNotFound, documentID)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w (id %s)", ErrDocumentForbidden, documentID)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("document source returned status %d: %s", resp.StatusCode, string(body))
	}

	var content contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, fmt.Errorf("failed to decode document response: %w", err)
	}

	return &models.SourceDocument{
		ID:         documentID,
		Title:      content.Title,
		MarkupBody: content.Body.Storage.Value,
	}, nil
}
