package storage

import "time"

// DocumentRecord represents a processed markdown document in the database.
type DocumentRecord struct {
	ID         string // UUID
	SourcePath string // Path the markdown was read from
	Title      string // Extracted document title
	Hash       string // SHA256 hex string of file content
	ChunkCount int
	UpdatedAt  time.Time
}

// ChunkRecord represents a stored chunk with its enrichment metadata.
// ID doubles as the Qdrant point ID.
type ChunkRecord struct {
	ID               string
	DocumentID       string
	ChunkIndex       int
	HeadingPath      string // Format: "# Heading1 > ## Heading2"
	Text             string
	CharCount        int
	OverlapPrefixLen int
	SpanStart        int
	SpanEnd          int
	Summary          string
	Questions        []string
	Keywords         []string
}
