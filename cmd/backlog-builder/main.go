package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"backlog-builder/internal/cache"
	"backlog-builder/internal/config"
	"backlog-builder/internal/helpers"
	"backlog-builder/internal/models"
	"backlog-builder/internal/repositories"
	"backlog-builder/internal/services"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var (
	configFile   string
	collectionID string
	dryRun       bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "backlog-builder",
		Short: "Backlog Builder - turn structured documents into tracker work items",
		Long: `Backlog Builder analyzes a structured document (a Confluence page or a
local markdown file), classifies its sections into ranked backlog items,
and creates them in JIRA.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")

	var force bool
	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)

	var title string
	var fromFile, refresh, save bool
	var analyzeCmd = &cobra.Command{
		Use:   "analyze <document-id|file.md>",
		Short: "Analyze a document into ranked backlog items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], title, fromFile, refresh, save)
		},
	}
	analyzeCmd.Flags().StringVarP(&collectionID, "collection", "k", "", "Target collection (JIRA project key)")
	analyzeCmd.Flags().StringVarP(&title, "title", "t", "", "Document title override")
	analyzeCmd.Flags().BoolVar(&fromFile, "file", false, "Treat the argument as a local markdown file")
	analyzeCmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Discard any cached analysis first")
	analyzeCmd.Flags().BoolVarP(&save, "save", "s", false, "Save the analysis to the output directory")
	analyzeCmd.MarkFlagRequired("collection")
	rootCmd.AddCommand(analyzeCmd)

	var documentID string
	var createCmd = &cobra.Command{
		Use:   "create-items <analysis.json>",
		Short: "Create tracker items from a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateItems(args[0], documentID)
		},
	}
	createCmd.Flags().StringVarP(&collectionID, "collection", "k", "", "Target collection (JIRA project key)")
	createCmd.Flags().StringVarP(&documentID, "document", "D", "", "Source document ID (for cache invalidation)")
	createCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Show what would be created without creating anything")
	createCmd.MarkFlagRequired("collection")
	createCmd.MarkFlagRequired("document")
	rootCmd.AddCommand(createCmd)

	var importTitle string
	var importCmd = &cobra.Command{
		Use:   "import-items <items.json>",
		Short: "Store an externally generated item batch as an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportItems(args[0], documentID, importTitle)
		},
	}
	importCmd.Flags().StringVarP(&collectionID, "collection", "k", "", "Target collection (JIRA project key)")
	importCmd.Flags().StringVarP(&documentID, "document", "D", "", "Source document ID")
	importCmd.Flags().StringVarP(&importTitle, "title", "t", "", "Document title")
	importCmd.MarkFlagRequired("collection")
	importCmd.MarkFlagRequired("document")
	rootCmd.AddCommand(importCmd)

	var cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached analyses",
	}
	var cacheShowCmd = &cobra.Command{
		Use:   "show <document-id>",
		Short: "Show the cached analysis for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheShow(args[0])
		},
	}
	var cacheClearCmd = &cobra.Command{
		Use:   "clear <document-id>",
		Short: "Remove the cached analysis for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(args[0])
		},
	}
	for _, sub := range []*cobra.Command{cacheShowCmd, cacheClearCmd} {
		sub.Flags().StringVarP(&collectionID, "collection", "k", "", "Target collection (JIRA project key)")
		sub.MarkFlagRequired("collection")
		cacheCmd.AddCommand(sub)
	}
	rootCmd.AddCommand(cacheCmd)

	if err := rootCmd.Execute(); err != nil {
		helpers.PrintError("Error: %v", err)
		os.Exit(1)
	}
}

func runInit(force bool) error {
	if _, err := os.Stat(configFile); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", configFile)
	}

	sample := config.Sample()
	data, err := marshalConfig(sample)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	helpers.PrintSuccess("Configuration file created at %s", configFile)
	helpers.PrintWarning("Edit the configuration file and add your API tokens before analyzing.")
	return nil
}

func runAnalyze(target, title string, fromFile, refresh, save bool) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var source repositories.DocumentSource
	if fromFile {
		source = repositories.NewFileSource()
	} else {
		if err := cfg.ValidateConfluence(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
		source = repositories.NewConfluenceRepository(&cfg.Confluence)
	}

	analysisCache, err := buildCache(cfg)
	if err != nil {
		return err
	}
	analysisService := services.NewAnalysisService(source, analysisCache, &cfg.Processing)

	helpers.PrintTitle("Analyzing Document")
	helpers.PrintInfo("Document: %s | Collection: %s", target, collectionID)

	if refresh {
		analysisService.ClearStored(target, collectionID)
	}

	resp, err := analysisService.Analyze(target, title, collectionID)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	analysisService.DisplayAnalysis(resp)

	if save || cfg.Processing.SaveAnalysis {
		if err := analysisService.SaveAnalysis(&resp.Result); err != nil {
			return err
		}
	}

	helpers.PrintSuccess("Analysis completed")
	return nil
}

func runCreateItems(analysisFile, documentID string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var result models.AnalysisResult
	if err := helpers.LoadJSON(analysisFile, &result); err != nil {
		return fmt.Errorf("failed to load analysis file: %w", err)
	}
	helpers.PrintSuccess("Loaded analysis: %s (%d items)", result.DocumentTitle, len(result.Items))

	for i, item := range result.Items {
		helpers.PrintInfo("%d. [%s/%s] %s", i+1, item.ItemType, item.Priority, item.Title)
	}

	if dryRun {
		helpers.PrintInfo("Dry run mode - no tracker items will be created")
		return nil
	}

	if !confirmCreation() {
		helpers.PrintInfo("Operation cancelled by user")
		return nil
	}

	if err := cfg.ValidateJira(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	jiraRepo := repositories.NewJiraRepository(&cfg.Jira)
	if err := testConnection(jiraRepo, collectionID); err != nil {
		return err
	}

	analysisCache, err := buildCache(cfg)
	if err != nil {
		return err
	}
	creationService := services.NewCreationService(jiraRepo, jiraRepo, analysisCache)

	outcome, err := creationService.Submit(collectionID, documentID, result.Items)
	if err != nil {
		return fmt.Errorf("failed to create tracker items: %w", err)
	}

	helpers.PrintSeparator()
	helpers.PrintSuccess("Created %d item(s)", len(outcome.Created))
	if len(outcome.Errors) > 0 {
		helpers.PrintWarning("%d item(s) failed:", len(outcome.Errors))
		for _, e := range outcome.Errors {
			helpers.PrintWarning("  %s: %s", e.Item.Title, e.Message)
		}
	}
	return nil
}

func runImportItems(itemsFile, documentID, title string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	payload, err := os.ReadFile(itemsFile)
	if err != nil {
		return fmt.Errorf("failed to read items file: %w", err)
	}

	analysisCache, err := buildCache(cfg)
	if err != nil {
		return err
	}
	importService := services.NewImportService(analysisCache)

	result, err := importService.Import(documentID, title, collectionID, payload)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	helpers.PrintSuccess("Imported %d item(s) for document %s", len(result.Items), documentID)
	return nil
}

func runCacheShow(documentID string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	analysisCache, err := buildCache(cfg)
	if err != nil {
		return err
	}
	analysisService := services.NewAnalysisService(nil, analysisCache, &cfg.Processing)

	stored := analysisService.GetStored(documentID, collectionID)
	if !stored.Found {
		helpers.PrintInfo("No cached analysis for %s / %s", documentID, collectionID)
		return nil
	}

	analysisService.DisplayAnalysis(&services.AnalysisResponse{
		Result:    *stored.Data,
		FromCache: true,
		CacheAge:  stored.CacheAge,
	})
	return nil
}

func runCacheClear(documentID string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	analysisCache, err := buildCache(cfg)
	if err != nil {
		return err
	}
	if ok := services.NewAnalysisService(nil, analysisCache, &cfg.Processing).ClearStored(documentID, collectionID); !ok {
		return fmt.Errorf("failed to clear cached analysis")
	}
	helpers.PrintSuccess("Cleared cached analysis for %s / %s", documentID, collectionID)
	return nil
}

// buildCache wires the configured store backend behind the TTL cache.
func buildCache(cfg *config.Config) (*cache.AnalysisCache, error) {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	switch cfg.Cache.Backend {
	case "file":
		store, err := cache.NewFileStore(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache store: %w", err)
		}
		return cache.NewAnalysisCache(store, ttl), nil
	case "memory":
		return cache.NewAnalysisCache(cache.NewMemoryStore(), ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}

func testConnection(repo *repositories.JiraRepository, projectKey string) error {
	helpers.PrintInfo("Testing JIRA authentication...")

	projects, err := repo.TestConnection()
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	for _, project := range projects {
		if project.Key == projectKey {
			helpers.PrintSuccess("Authenticated; project %s (%s) is accessible", project.Key, project.Name)
			return nil
		}
	}

	helpers.PrintWarning("Project key '%s' not found in accessible projects!", projectKey)
	return fmt.Errorf("project key '%s' not found in accessible projects", projectKey)
}

func marshalConfig(c *config.Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func confirmCreation() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Do you want to create these items in JIRA? (y/N): ")
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
