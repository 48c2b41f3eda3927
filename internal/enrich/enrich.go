package enrich

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_enricher.go -package=mocks docvector/internal/enrich Enricher

import (
	"context"

	"docvector/internal/chunker"
)

const (
	// MaxQuestions caps the hypothetical questions kept per chunk.
	MaxQuestions = 4
	// MaxKeywords caps the keywords kept per chunk.
	MaxKeywords = 5
)

// Metadata is the enrichment result for one chunk.
type Metadata struct {
	Summary               string   `json:"summary"`
	HypotheticalQuestions []string `json:"hypothetical_questions"`
	Keywords              []string `json:"keywords"`
}

// Enricher generates retrieval metadata for a chunk. The chunk's heading
// path gives the model document context beyond the chunk text itself.
type Enricher interface {
	EnrichChunk(ctx context.Context, rec chunker.ChunkRecord) (Metadata, error)
}
