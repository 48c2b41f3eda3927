package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docvector/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// GetBySourcePath gets a document by its source path.
	// Returns nil and ErrNotFound if not found.
	GetBySourcePath(ctx context.Context, sourcePath string) (*DocumentRecord, error)
	// Upsert inserts a new document or updates an existing one.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// List returns all documents ordered by source path.
	List(ctx context.Context) ([]*DocumentRecord, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// GetBySourcePath gets a document by its source path.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetBySourcePath(ctx context.Context, sourcePath string) (*DocumentRecord, error) {
	var doc DocumentRecord
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, source_path, title, hash, chunk_count, updated_at FROM documents WHERE source_path = ?",
		sourcePath,
	).Scan(&doc.ID, &doc.SourcePath, &doc.Title, &doc.Hash, &doc.ChunkCount, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	doc.UpdatedAt, err = parseSQLiteTime(updatedAtStr)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Upsert inserts a new document or updates an existing one. New documents
// get a generated UUID; existing ones keep their ID.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	existing, err := r.GetBySourcePath(ctx, doc.SourcePath)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil {
		doc.ID = existing.ID
	} else if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, source_path, title, hash, chunk_count, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (source_path) DO UPDATE SET
		 title = excluded.title, hash = excluded.hash,
		 chunk_count = excluded.chunk_count, updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.SourcePath, doc.Title, doc.Hash, doc.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// List returns all documents ordered by source path.
func (r *DocumentRepo) List(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, source_path, title, hash, chunk_count, updated_at FROM documents ORDER BY source_path",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		var updatedAtStr string
		if err := rows.Scan(&doc.ID, &doc.SourcePath, &doc.Title, &doc.Hash, &doc.ChunkCount, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if doc.UpdatedAt, err = parseSQLiteTime(updatedAtStr); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return docs, nil
}

// parseSQLiteTime parses the DATETIME formats SQLite may emit.
func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
