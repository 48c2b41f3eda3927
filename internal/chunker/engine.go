package chunker

import (
	"context"
	"errors"
	"fmt"
)

// Strategy selects the chunk assembly policy.
type Strategy string

const (
	// StrategyHybrid uses semantic boundary detection with hard size
	// enforcement. This is the default.
	StrategyHybrid Strategy = "hybrid"
	// StrategySemantic flushes only at heading and atomic-block boundaries;
	// the size ceiling is a soft hint.
	StrategySemantic Strategy = "semantic"
	// StrategyFixed cuts the document as a flat character stream at MaxSize
	// boundaries, keeping atomic blocks whole.
	StrategyFixed Strategy = "fixed"
	// StrategyRecursive splits by separator priority: heading, blank line,
	// sentence, whitespace, descending only while a piece exceeds MaxSize.
	StrategyRecursive Strategy = "recursive"
)

// ParseStrategy parses a strategy name. An empty name selects hybrid.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "":
		return StrategyHybrid, nil
	case StrategyHybrid, StrategySemantic, StrategyFixed, StrategyRecursive:
		return Strategy(name), nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, name)
	}
}

// ErrInvalidOptions is returned when chunking options are rejected before
// processing begins.
var ErrInvalidOptions = errors.New("invalid chunker options")

// Options configures the chunking engine.
type Options struct {
	// MinSize is the size floor in runes. All chunks except the last of a
	// document are at least this large, unless a single atomic block forced
	// an oversized chunk.
	MinSize int
	// MaxSize is the size ceiling in runes. Exceeded only by a single
	// oversized atomic block, or when the ceiling conflicts with the floor.
	MaxSize int
	// OverlapSize is the trailing-context budget in runes copied from the
	// end of each chunk into the start of the next. Must be below MinSize.
	OverlapSize int
	// Strategy selects the assembly policy. Empty means hybrid.
	Strategy Strategy
	// AtomicLists marks list blocks as indivisible.
	AtomicLists bool
}

// DefaultOptions mirror the tuning of the upstream processing defaults.
func DefaultOptions() Options {
	return Options{
		MinSize:     300,
		MaxSize:     2000,
		OverlapSize: 200,
		Strategy:    StrategyHybrid,
	}
}

// Validate rejects inconsistent option sets. Violations are fatal: the
// engine refuses to start a pass with invalid options.
func (o Options) Validate() error {
	if o.MinSize <= 0 {
		return fmt.Errorf("%w: min_size must be positive, got %d", ErrInvalidOptions, o.MinSize)
	}
	if o.MaxSize < o.MinSize {
		return fmt.Errorf("%w: max_size %d is below min_size %d", ErrInvalidOptions, o.MaxSize, o.MinSize)
	}
	if o.OverlapSize < 0 {
		return fmt.Errorf("%w: overlap_size must not be negative, got %d", ErrInvalidOptions, o.OverlapSize)
	}
	if o.OverlapSize >= o.MinSize {
		return fmt.Errorf("%w: overlap_size %d must be below min_size %d", ErrInvalidOptions, o.OverlapSize, o.MinSize)
	}
	if _, err := ParseStrategy(string(o.Strategy)); err != nil {
		return err
	}
	return nil
}

// ImageRef is one entry of the image-reference manifest produced by document
// conversion. The engine does not interpret images; refs whose offsets fall
// inside a chunk's span are passed through on the record.
type ImageRef struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Document is the chunking input: markdown text plus the conversion
// collaborator's image manifest.
type Document struct {
	Source   string
	Markdown string
	Images   []ImageRef
}

// Engine partitions one document at a time into bounded-size chunks. It
// holds no per-document state, so independent documents may be chunked
// concurrently by the same Engine value.
type Engine struct {
	opts Options
}

// New creates an engine, validating the options up front.
func New(opts Options) (*Engine, error) {
	if opts.Strategy == "" {
		opts.Strategy = StrategyHybrid
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Each runs one chunking pass over doc, calling yield for every emitted
// record in document order. Emission is sequential and deterministic; yield
// returning false stops the pass early. Cancellation is checked between
// block transitions, and records emitted before cancellation remain valid.
func (e *Engine) Each(ctx context.Context, doc Document, yield func(ChunkRecord) bool) error {
	blocks := parseBlocks(doc.Markdown, e.opts.AtomicLists)
	em := newEmitter(doc, e.opts, yield)

	var err error
	switch e.opts.Strategy {
	case StrategyFixed:
		err = e.assembleFixed(ctx, blocks, em)
	case StrategyRecursive:
		err = e.assemble(ctx, explodeBlocks(blocks, e.opts.MaxSize), em, modeRecursive)
	case StrategySemantic:
		err = e.assemble(ctx, blocks, em, modeSemantic)
	default:
		err = e.assemble(ctx, blocks, em, modeHybrid)
	}
	if err != nil {
		// Release the buffered record so everything produced before the
		// abort reaches the caller.
		em.abort()
		return err
	}
	em.finish(len(doc.Markdown))
	return nil
}

// Chunk runs one pass over doc and collects all records. Re-running on
// identical input and options yields an identical sequence.
func (e *Engine) Chunk(ctx context.Context, doc Document) ([]ChunkRecord, error) {
	var records []ChunkRecord
	err := e.Each(ctx, doc, func(rec ChunkRecord) bool {
		records = append(records, rec)
		return true
	})
	if err != nil {
		return records, err
	}
	return records, nil
}
