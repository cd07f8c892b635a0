package services

import (
	"fmt"
	"strings"
	"time"

	"backlog-builder/internal/cache"
	"backlog-builder/internal/classifier"
	"backlog-builder/internal/config"
	"backlog-builder/internal/helpers"
	"backlog-builder/internal/markup"
	"backlog-builder/internal/models"
	"backlog-builder/internal/repositories"
)

// AnalysisService turns source documents into ranked work items,
// fronted by the TTL cache.
type AnalysisService struct {
	source     repositories.DocumentSource
	cache      *cache.AnalysisCache
	processing *config.ProcessingConfig
}

// AnalysisResponse is an analysis result plus its cache provenance.
type AnalysisResponse struct {
	Result    models.AnalysisResult `json:"result"`
	FromCache bool                  `json:"from_cache"`
	CacheAge  time.Duration         `json:"cache_age"`
}

// StoredAnalysis reports a cache probe without recomputation.
type StoredAnalysis struct {
	Found    bool                   `json:"found"`
	Data     *models.AnalysisResult `json:"data,omitempty"`
	CacheAge time.Duration          `json:"cache_age,omitempty"`
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(source repositories.DocumentSource, analysisCache *cache.AnalysisCache, processing *config.ProcessingConfig) *AnalysisService {
	return &AnalysisService{
		source:     source,
		cache:      analysisCache,
		processing: processing,
	}
}

// Analyze returns the cached analysis for the document/collection pair
// when fresh, otherwise fetches the document and runs the pipeline:
// section extraction, classification, ranking.
func (s *AnalysisService) Analyze(documentID, documentTitle, targetCollectionID string) (*AnalysisResponse, error) {
	result, fromCache, age, err := s.cache.GetOrAnalyze(documentID, targetCollectionID, func() (models.AnalysisResult, error) {
		return s.runPipeline(documentID, documentTitle, targetCollectionID)
	})
	if err != nil {
		return nil, err
	}
	return &AnalysisResponse{Result: result, FromCache: fromCache, CacheAge: age}, nil
}

// runPipeline executes one full document-to-backlog transformation.
func (s *AnalysisService) runPipeline(documentID, documentTitle, targetCollectionID string) (models.AnalysisResult, error) {
	source, err := s.source.FetchDocument(documentID)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	title := source.Title
	if strings.TrimSpace(title) == "" {
		title = documentTitle
	}

	doc := markup.BuildDocument(title, source.MarkupBody)
	raw := classifier.Classify(doc, targetCollectionID)
	items := classifier.RankAndDedupe(raw)

	docType := classifier.DetectDocumentType(doc)
	summary := fmt.Sprintf("%s: %d sections analyzed, %d work items generated (%s)",
		title, len(doc.Sections), len(items), docType)

	return models.AnalysisResult{
		Summary:       summary,
		Items:         items,
		CreatedAt:     time.Now().UnixMilli(),
		DocumentTitle: title,
		Meta:          models.BuildMeta(len(doc.Sections), len(source.MarkupBody), items),
	}, nil
}

// GetStored probes the cache without triggering an analysis.
func (s *AnalysisService) GetStored(documentID, targetCollectionID string) *StoredAnalysis {
	result, age, found := s.cache.Get(documentID, targetCollectionID)
	if !found {
		return &StoredAnalysis{Found: false}
	}
	return &StoredAnalysis{Found: true, Data: &result, CacheAge: age}
}

// ClearStored removes the cached analysis for the pair.
func (s *AnalysisService) ClearStored(documentID, targetCollectionID string) bool {
	return s.cache.Invalidate(documentID, targetCollectionID) == nil
}

// DisplayAnalysis prints an analysis result in the CLI format.
func (s *AnalysisService) DisplayAnalysis(resp *AnalysisResponse) {
	helpers.PrintTitle("Analysis: %s", resp.Result.DocumentTitle)
	helpers.PrintInfo("%s", resp.Result.Summary)
	if resp.FromCache {
		helpers.PrintInfo("Served from cache (age %s)", resp.CacheAge.Round(time.Second))
	}
	helpers.PrintSeparator()

	for i, item := range resp.Result.Items {
		helpers.PrintInfo("%d. [%s/%s] %s", i+1, item.ItemType, item.Priority, item.Title)
		if len(item.Labels) > 0 {
			helpers.PrintInfo("   labels: %s", strings.Join(item.Labels, ", "))
		}
	}

	helpers.PrintSeparator()
	helpers.PrintInfo("Sections: %d | Content: %d bytes",
		resp.Result.Meta.SectionsFound, resp.Result.Meta.RawContentLength)
}

// SaveAnalysis writes the result as JSON plus a markdown summary into
// the configured output directory.
func (s *AnalysisService) SaveAnalysis(result *models.AnalysisResult) error {
	if err := helpers.EnsureDir(s.processing.OutputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	jsonPath := helpers.OutputPath(s.processing.OutputDir, "backlog-analysis", "json")
	if err := helpers.SaveJSON(result, jsonPath); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	helpers.PrintSuccess("Saved analysis to: %s", jsonPath)

	mdPath := helpers.OutputPath(s.processing.OutputDir, "backlog-summary", "md")
	if err := helpers.SaveText(s.renderSummary(result), mdPath); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	helpers.PrintSuccess("Saved summary to: %s", mdPath)
	return nil
}

func (s *AnalysisService) renderSummary(result *models.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", result.DocumentTitle))
	sb.WriteString(fmt.Sprintf("%s\n\n", result.Summary))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n",
		time.UnixMilli(result.CreatedAt).Format("2006-01-02 15:04:05")))

	for i, item := range result.Items {
		sb.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, item.Title))
		sb.WriteString(fmt.Sprintf("**Type:** %s | **Priority:** %s\n\n", item.ItemType, item.Priority))
		if len(item.Labels) > 0 {
			sb.WriteString(fmt.Sprintf("**Labels:** %s\n\n", strings.Join(item.Labels, ", ")))
		}
		sb.WriteString(item.Description)
		sb.WriteString("\n")
	}

	return sb.String()
}
