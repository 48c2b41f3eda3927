package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
)

// EngineVersion identifies the chunking implementation. Bump it when the
// chunking logic changes enough that stored chunks should be rebuilt.
const EngineVersion = "v1.0"

// CoverageStats describes the current state of the index.
type CoverageStats struct {
	// DocsProcessed is the total number of documents in the database.
	DocsProcessed int `json:"docs_processed"`
	// DocsWithoutChunks is the number of documents that produced 0 chunks.
	DocsWithoutChunks int `json:"docs_without_chunks"`
	// ChunksStored is the total number of stored chunks.
	ChunksStored int `json:"chunks_stored"`
	// ChunkSizeStats summarizes chunk sizes in characters.
	ChunkSizeStats ChunkSizeStats `json:"chunk_size_stats"`
	// EngineVersion is the version of the chunking engine.
	EngineVersion string `json:"engine_version"`
	// IndexVersion is a hash identifying the index build
	// (engine version + embedding model + chunking params).
	IndexVersion string `json:"index_version"`
}

// ChunkSizeStats summarizes character counts across stored chunks.
type ChunkSizeStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// CoverageStats computes index coverage statistics from the database.
func (p *Pipeline) CoverageStats(ctx context.Context, embeddingModel string) (*CoverageStats, error) {
	docs, err := p.cfg.Documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	stats := &CoverageStats{
		DocsProcessed: len(docs),
		EngineVersion: EngineVersion,
	}
	for _, doc := range docs {
		if doc.ChunkCount == 0 {
			stats.DocsWithoutChunks++
		}
	}

	sizes, err := p.cfg.Chunks.SizeStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk sizes: %w", err)
	}
	stats.ChunksStored = len(sizes)
	stats.ChunkSizeStats = computeSizeStats(sizes)

	opts := p.cfg.Engine.Options()
	versionInput := fmt.Sprintf("%s|%s|min=%d|max=%d|overlap=%d|strategy=%s",
		EngineVersion, embeddingModel, opts.MinSize, opts.MaxSize, opts.OverlapSize, opts.Strategy)
	hash := sha256.Sum256([]byte(versionInput))
	stats.IndexVersion = hex.EncodeToString(hash[:])[:16]

	return stats, nil
}

// computeSizeStats computes min, max, mean, and p95 from chunk sizes.
func computeSizeStats(sizes []int) ChunkSizeStats {
	if len(sizes) == 0 {
		return ChunkSizeStats{}
	}

	sorted := make([]int, len(sizes))
	copy(sorted, sizes)
	sort.Ints(sorted)

	sum := 0
	for _, size := range sizes {
		sum += size
	}
	mean := float64(sum) / float64(len(sizes))

	// Nearest-rank: the 95th percentile is the value at rank ceil(0.95*n),
	// converted to a zero-based index.
	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return ChunkSizeStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
