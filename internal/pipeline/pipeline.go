package pipeline

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docvector/internal/chunker"
	"docvector/internal/contextutil"
	"docvector/internal/convert"
	"docvector/internal/enrich"
	"docvector/internal/llm"
	"docvector/internal/scan"
	"docvector/internal/storage"
	"docvector/internal/vectorstore"
)

// Config wires the pipeline's collaborators.
type Config struct {
	Scanner   *scan.Scanner
	Documents storage.DocumentStore
	Chunks    storage.ChunkStore
	Engine    *chunker.Engine
	Enricher  enrich.Enricher
	// Captioner turns extracted images into caption chunks. Nil disables
	// image captioning.
	Captioner  enrich.ImageCaptioner
	Embedder   llm.Embedder
	Vectors    vectorstore.VectorStore
	Collection string
	VectorSize int
	// EnrichConcurrency caps concurrent enrichment requests per document.
	EnrichConcurrency int
}

// Pipeline orchestrates processing of markdown files into SQLite and Qdrant:
// chunk, enrich, embed, store.
type Pipeline struct {
	cfg Config
}

// New creates a processing pipeline.
func New(cfg Config) *Pipeline {
	if cfg.EnrichConcurrency <= 0 {
		cfg.EnrichConcurrency = 10
	}
	return &Pipeline{cfg: cfg}
}

// ProcessFile processes a single markdown file. It checks whether the file
// has changed (via hash), chunks it, enriches and embeds the chunks, and
// stores them in both SQLite and Qdrant.
func (p *Pipeline) ProcessFile(ctx context.Context, absPath string) error {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", absPath, err)
	}

	hash := sha256.Sum256(content)
	hashHex := fmt.Sprintf("%x", hash)

	existing, err := p.cfg.Documents.GetBySourcePath(ctx, absPath)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	// Skip re-processing if hash matches
	if existing != nil && existing.Hash == hashHex {
		logger.DebugContext(ctx, "skipping unchanged file", "path", absPath, "hash", hashHex)
		return nil
	}

	markdown := string(content)
	title := chunker.DocumentTitle(markdown, filepath.Base(absPath))

	docID := uuid.New().String()
	if existing != nil {
		docID = existing.ID
	}

	images := convert.ExtractImageRefs(markdown)
	records, err := p.cfg.Engine.Chunk(ctx, chunker.Document{
		Source:   absPath,
		Markdown: markdown,
		Images:   images,
	})
	if err != nil {
		return fmt.Errorf("failed to chunk %s: %w", absPath, err)
	}

	imageChunks := p.captionImages(ctx, absPath, images)
	total := len(records) + len(imageChunks)

	if err := p.cfg.Documents.Upsert(ctx, &storage.DocumentRecord{
		ID:         docID,
		SourcePath: absPath,
		Title:      title,
		Hash:       hashHex,
		ChunkCount: total,
	}); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	if total == 0 {
		logger.WarnContext(ctx, "no chunks generated", "path", absPath)
		return nil
	}

	metadata, enrichFailures := p.enrichAll(ctx, records)
	if enrichFailures > 0 {
		logger.WarnContext(ctx, "some chunks failed enrichment",
			"path", absPath, "failed", enrichFailures, "total", len(records))
	}

	// Caption chunks are embedded through their caption text, in the same
	// request batch as the text chunks.
	texts := make([]string, total)
	for i, rec := range records {
		texts[i] = rec.Text
	}
	for j, ic := range imageChunks {
		texts[len(records)+j] = ic.text
	}

	embeddings, err := p.cfg.Embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != total {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", total, len(embeddings))
	}

	// Replace any chunks from a previous version of the document.
	if existing != nil {
		oldIDs, err := p.cfg.Chunks.ListIDsByDocument(ctx, docID)
		if err != nil {
			return fmt.Errorf("failed to list old chunk IDs: %w", err)
		}
		if len(oldIDs) > 0 {
			if err := p.cfg.Vectors.Delete(ctx, p.cfg.Collection, oldIDs); err != nil {
				// Continue anyway, new points overwrite by ID where they collide.
				logger.WarnContext(ctx, "failed to delete old chunks from vector store",
					"error", err, "count", len(oldIDs))
			}
			if err := p.cfg.Chunks.DeleteByDocument(ctx, docID); err != nil {
				return fmt.Errorf("failed to delete old chunks: %w", err)
			}
		}
	}

	points := make([]vectorstore.Point, total)
	for i, rec := range records {
		chunkID := uuid.New().String()

		if err := p.cfg.Chunks.Insert(ctx, &storage.ChunkRecord{
			ID:               chunkID,
			DocumentID:       docID,
			ChunkIndex:       rec.Index,
			HeadingPath:      rec.HeadingPath.String(),
			Text:             rec.Text,
			CharCount:        rec.CharCount,
			OverlapPrefixLen: rec.OverlapPrefixLen,
			SpanStart:        rec.Span.Start,
			SpanEnd:          rec.Span.End,
			Summary:          metadata[i].Summary,
			Questions:        metadata[i].HypotheticalQuestions,
			Keywords:         metadata[i].Keywords,
		}); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}

		points[i] = vectorstore.Point{
			ID:  chunkID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"document_id":    docID,
				"document_title": title,
				"source_path":    absPath,
				"chunk_index":    rec.Index,
				"heading_path":   rec.HeadingPath.String(),
				"char_count":     rec.CharCount,
				"span_start":     rec.Span.Start,
				"span_end":       rec.Span.End,
				"summary":        metadata[i].Summary,
			},
		}
	}

	for j, ic := range imageChunks {
		chunkID := uuid.New().String()
		idx := len(records) + j

		if err := p.cfg.Chunks.Insert(ctx, &storage.ChunkRecord{
			ID:         chunkID,
			DocumentID: docID,
			ChunkIndex: idx,
			Text:       ic.text,
			CharCount:  utf8.RuneCountInString(ic.text),
			SpanStart:  ic.ref.Start,
			SpanEnd:    ic.ref.End,
			Summary:    ic.meta.Caption,
			Keywords:   ic.meta.KeyElements,
		}); err != nil {
			return fmt.Errorf("failed to insert image chunk: %w", err)
		}

		points[idx] = vectorstore.Point{
			ID:  chunkID,
			Vec: embeddings[idx],
			Meta: map[string]any{
				"document_id":    docID,
				"document_title": title,
				"source_path":    absPath,
				"chunk_index":    idx,
				"image_path":     ic.ref.Path,
				"image_type":     ic.meta.ImageType,
				"char_count":     utf8.RuneCountInString(ic.text),
				"span_start":     ic.ref.Start,
				"span_end":       ic.ref.End,
				"summary":        ic.meta.Caption,
			},
		}
	}

	if err := p.cfg.Vectors.Upsert(ctx, p.cfg.Collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	logger.InfoContext(ctx, "processed document",
		"path", absPath, "title", title, "chunks", len(records), "image_chunks", len(imageChunks))
	return nil
}

// imageChunk pairs an image reference with its caption metadata and the
// composed text that stands in for the image downstream.
type imageChunk struct {
	ref  chunker.ImageRef
	meta enrich.ImageMetadata
	text string
}

// captionImages reads and captions every image the document references.
// Failures are logged and skipped so a broken image never fails its
// document. Returns nil when no captioner is configured.
func (p *Pipeline) captionImages(ctx context.Context, absPath string, refs []chunker.ImageRef) []imageChunk {
	if p.cfg.Captioner == nil || len(refs) == 0 {
		return nil
	}
	logger := contextutil.LoggerFromContext(ctx)
	baseDir := filepath.Dir(absPath)

	results := make([]*imageChunk, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.EnrichConcurrency)

	for i, ref := range refs {
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(ref.Path)))
			if err != nil {
				logger.WarnContext(gctx, "failed to read image", "image", ref.Path, "error", err)
				return nil
			}
			meta, err := p.cfg.Captioner.CaptionImage(gctx, data, mimeForImage(ref.Path))
			if err != nil {
				logger.WarnContext(gctx, "image captioning failed", "image", ref.Path, "error", err)
				return nil
			}
			results[i] = &imageChunk{ref: ref, meta: meta, text: imageChunkText(meta)}
			return nil
		})
	}
	// Workers only return nil, so this cannot fail.
	_ = g.Wait()

	var out []imageChunk
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// imageChunkText renders caption metadata as the retrieval text of an image
// chunk.
func imageChunkText(meta enrich.ImageMetadata) string {
	var b strings.Builder
	b.WriteString("Image")
	if meta.ImageType != "" {
		b.WriteString(" (" + meta.ImageType + ")")
	}
	b.WriteString(": " + meta.Caption)
	if len(meta.KeyElements) > 0 {
		b.WriteString("\nKey elements: " + strings.Join(meta.KeyElements, ", "))
	}
	return b.String()
}

func mimeForImage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// enrichAll enriches every chunk concurrently. A failed enrichment leaves
// empty metadata for that chunk and never discards its siblings, so the
// returned slice is always aligned with records.
func (p *Pipeline) enrichAll(ctx context.Context, records []chunker.ChunkRecord) ([]enrich.Metadata, int) {
	logger := contextutil.LoggerFromContext(ctx)

	metadata := make([]enrich.Metadata, len(records))
	failed := make([]bool, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.EnrichConcurrency)

	for i, rec := range records {
		g.Go(func() error {
			meta, err := p.cfg.Enricher.EnrichChunk(gctx, rec)
			if err != nil {
				logger.WarnContext(gctx, "chunk enrichment failed",
					"chunk_index", rec.Index, "error", err)
				failed[i] = true
				return nil
			}
			metadata[i] = meta
			return nil
		})
	}

	// Workers only return nil, so this cannot fail.
	_ = g.Wait()

	failures := 0
	for _, f := range failed {
		if f {
			failures++
		}
	}
	return metadata, failures
}

// ProcessAll scans the input directory and processes every markdown file.
// Errors for individual files are logged but don't stop the run.
func (p *Pipeline) ProcessAll(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := p.cfg.Vectors.EnsureCollection(ctx, p.cfg.Collection, p.cfg.VectorSize); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	files, err := p.cfg.Scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan input: %w", err)
	}

	logger.InfoContext(ctx, "starting processing", "total_files", len(files))

	var successCount, errorCount int

	for _, file := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.ProcessFile(ctx, file.AbsPath); err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to process file", "path", file.RelPath, "error", err)
			continue
		}
		successCount++
	}

	logger.InfoContext(ctx, "processing completed",
		"total_files", len(files), "success", successCount, "errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("processing completed with %d errors", errorCount)
	}
	return nil
}
