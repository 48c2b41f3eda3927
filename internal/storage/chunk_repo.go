package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks docvector/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// Insert inserts a single chunk into the database.
	// The chunk.ID must be set (UUID) before calling this method.
	Insert(ctx context.Context, chunk *ChunkRecord) error
	// DeleteByDocument deletes all chunks for a given document ID.
	DeleteByDocument(ctx context.Context, documentID string) error
	// ListIDsByDocument returns all chunk IDs for a document, ordered by
	// chunk_index.
	ListIDsByDocument(ctx context.Context, documentID string) ([]string, error)
	// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ChunkRecord, error)
	// SizeStats returns the char_count of every stored chunk.
	SizeStats(ctx context.Context) ([]int, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// Insert inserts a single chunk into the database.
// The chunk.ID must be set (UUID) before calling this method.
func (r *ChunkRepo) Insert(ctx context.Context, chunk *ChunkRecord) error {
	questions, err := json.Marshal(chunk.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}
	keywords, err := json.Marshal(chunk.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO chunks (id, document_id, chunk_index, heading_path, text,
			char_count, overlap_prefix_len, span_start, span_end,
			summary, questions, keywords)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chunk.ID, chunk.DocumentID, chunk.ChunkIndex, chunk.HeadingPath, chunk.Text,
		chunk.CharCount, chunk.OverlapPrefixLen, chunk.SpanStart, chunk.SpanEnd,
		chunk.Summary, string(questions), string(keywords),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// DeleteByDocument deletes all chunks for a given document ID.
// Used when re-processing a document to remove old chunks first.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks by document: %w", err)
	}
	return nil
}

// ListIDsByDocument returns all chunk IDs for a document, ordered by
// chunk_index. Returns an empty slice if no chunks exist (not an error).
// Used to get Qdrant point IDs for deletion before re-processing.
func (r *ChunkRepo) ListIDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	var chunk ChunkRecord
	var questions, keywords string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, document_id, chunk_index, heading_path, text,
			char_count, overlap_prefix_len, span_start, span_end,
			summary, questions, keywords
		 FROM chunks WHERE id = ?`,
		id,
	).Scan(&chunk.ID, &chunk.DocumentID, &chunk.ChunkIndex, &chunk.HeadingPath, &chunk.Text,
		&chunk.CharCount, &chunk.OverlapPrefixLen, &chunk.SpanStart, &chunk.SpanEnd,
		&chunk.Summary, &questions, &keywords)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}

	if err := json.Unmarshal([]byte(questions), &chunk.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	if err := json.Unmarshal([]byte(keywords), &chunk.Keywords); err != nil {
		return nil, fmt.Errorf("failed to decode keywords: %w", err)
	}
	return &chunk, nil
}

// SizeStats returns the char_count of every stored chunk, in index order.
func (r *ChunkRepo) SizeStats(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT char_count FROM chunks ORDER BY document_id, chunk_index",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk sizes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sizes []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan chunk size: %w", err)
		}
		sizes = append(sizes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sizes, nil
}
