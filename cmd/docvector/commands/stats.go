package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"docvector/internal/chunker"
	"docvector/internal/pipeline"
	"docvector/internal/storage"
	"docvector/internal/vectorstore"
)

var statsWithCollection bool

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index coverage statistics",
		Long: `Report how many documents and chunks are stored, chunk size distribution,
and the index version. With --collection the Qdrant collection status is
included as well.`,
		RunE: runStats,
	}

	cmd.Flags().BoolVar(&statsWithCollection, "collection", false, "Include Qdrant collection info")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, ctx, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
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

	engine, err := chunker.New(cfg.Chunk)
	if err != nil {
		return fmt.Errorf("configuring chunker: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		Documents: storage.NewDocumentRepo(db),
		Chunks:    storage.NewChunkRepo(db),
		Engine:    engine,
	})

	stats, err := p.CoverageStats(ctx, cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	out := map[string]any{
		"coverage": stats,
	}

	if statsWithCollection {
		vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return fmt.Errorf("creating Qdrant client: %w", err)
		}
		info, err := vectorStore.GetCollectionInfo(ctx, cfg.QdrantCollection)
		if err != nil {
			return fmt.Errorf("querying collection info: %w", err)
		}
		out["collection"] = map[string]any{
			"name":         cfg.QdrantCollection,
			"vector_size":  info.VectorSize,
			"points_count": info.PointsCount,
			"status":       info.Status,
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
