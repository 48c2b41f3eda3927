package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"docvector/internal/chunker"
	"docvector/internal/enrich"
	"docvector/internal/llm"
	"docvector/internal/pipeline"
	"docvector/internal/scan"
	"docvector/internal/storage"
	"docvector/internal/vectorstore"
)

var processInputDir string

// NewProcessCmd creates the process command.
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [file...]",
		Short: "Chunk, enrich, embed and store markdown documents",
		Long: `Process markdown documents into SQLite and Qdrant. With no arguments the
configured input directory is scanned; with arguments only the named files
are processed. Unchanged files (same content hash) are skipped.

Examples:
  docvector process
  docvector process output/report/report.md
  docvector process --input ./output`,
		RunE: runProcess,
	}

	cmd.Flags().StringVarP(&processInputDir, "input", "i", "", "Input directory to scan (default: configured input dir)")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, ctx, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	inputDir := processInputDir
	if inputDir == "" {
		inputDir = cfg.InputDir
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		return fmt.Errorf("creating Qdrant client: %w", err)
	}

	engine, err := chunker.New(cfg.Chunk)
	if err != nil {
		return fmt.Errorf("configuring chunker: %w", err)
	}

	enricher, err := enrich.NewClient(enrich.ClientConfig{
		APIKey:      cfg.ChatAPIKey,
		BaseURL:     cfg.ChatBaseURL,
		Model:       cfg.ChatModel,
		VisionModel: cfg.VisionModel,
		MaxRetries:  cfg.EnrichMaxRetries,
	})
	if err != nil {
		return fmt.Errorf("configuring enrichment client: %w", err)
	}

	embedder := llm.NewEmbeddingsClient(
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingModel,
		cfg.EmbeddingVectorSize,
		cfg.EmbeddingBatchSize,
	)

	p := pipeline.New(pipeline.Config{
		Scanner:           scan.New(inputDir),
		Documents:         storage.NewDocumentRepo(db),
		Chunks:            storage.NewChunkRepo(db),
		Engine:            engine,
		Enricher:          enricher,
		Captioner:         enricher,
		Embedder:          embedder,
		Vectors:           vectorStore,
		Collection:        cfg.QdrantCollection,
		VectorSize:        cfg.EmbeddingVectorSize,
		EnrichConcurrency: cfg.EnrichBatchSize,
	})

	if len(args) == 0 {
		return p.ProcessAll(ctx)
	}

	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingVectorSize); err != nil {
		return fmt.Errorf("ensuring collection: %w", err)
	}

	for _, path := range args {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", path, err)
		}
		if err := p.ProcessFile(ctx, absPath); err != nil {
			return fmt.Errorf("processing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %s\n", path)
	}
	return nil
}
