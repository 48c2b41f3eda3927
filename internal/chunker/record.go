package chunker

import (
	"strings"
	"unicode/utf8"
)

// SourceSpan is a half-open byte range [Start, End) into the source
// document. Spans of consecutive records are contiguous and together cover
// the whole input.
type SourceSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ChunkRecord is the immutable output unit of a chunking pass. Ownership
// transfers to the caller on emission; the engine retains no reference.
type ChunkRecord struct {
	Index            int         `json:"index"`
	Text             string      `json:"text"`
	CharCount        int         `json:"char_count"`
	HeadingPath      HeadingPath `json:"heading_path,omitempty"`
	BlockKinds       []BlockKind `json:"block_kinds"`
	OverlapPrefixLen int         `json:"overlap_prefix_len"`
	Span             SourceSpan  `json:"source_span"`
	Images           []ImageRef  `json:"images,omitempty"`
	// Oversized marks chunks legitimately above MaxSize: a single atomic
	// block too large to split, or a floor-priority force append.
	Oversized bool `json:"oversized,omitempty"`
}

// placed pairs a block with the heading path in effect when it was consumed.
type placed struct {
	blk  Block
	path HeadingPath
}

// emitter owns the single working chunk of a pass and turns flushes into
// ChunkRecords. Records are delivered with a one-record delay so the last
// record's span can be extended to cover trailing blank input.
type emitter struct {
	doc     Document
	opts    Options
	yield   func(ChunkRecord) bool
	cursor  int
	index   int
	held    *ChunkRecord
	stopped bool

	prefix string // overlap prefix for the working chunk
	blocks []placed
	size   int // running rune count of the rendered text
}

func newEmitter(doc Document, opts Options, yield func(ChunkRecord) bool) *emitter {
	return &emitter{doc: doc, opts: opts, yield: yield}
}

func (em *emitter) empty() bool {
	return len(em.blocks) == 0
}

// clearPrefix discards the pending overlap prefix. Needed when the prefix
// alone fills the whole size budget and would block any block from being
// accumulated.
func (em *emitter) clearPrefix() {
	em.prefix = ""
	em.size = 0
}

// wouldExceed reports whether appending a block of the given rune size
// pushes the working chunk past the ceiling.
func (em *emitter) wouldExceed(runes int) bool {
	join := 0
	if em.size > 0 {
		join = 2
	}
	return em.size+join+runes > em.opts.MaxSize
}

func (em *emitter) append(blk Block, path HeadingPath) {
	if em.size > 0 {
		em.size += 2
	}
	em.size += utf8.RuneCountInString(blk.Text)
	em.blocks = append(em.blocks, placed{blk: blk, path: path})
}

// flush emits the working chunk. With carryHeadings set, trailing heading
// blocks are moved to the front of the next chunk instead of ending this
// one (headings start chunks, never end them). A flush whose body would be
// empty emits nothing and keeps accumulating.
func (em *emitter) flush(carryHeadings bool) {
	body := em.blocks
	var carried []placed
	if carryHeadings {
		n := len(body)
		for n > 0 && body[n-1].blk.Kind == KindHeading {
			n--
		}
		carried = body[n:]
		body = body[:n]
	}
	if len(body) == 0 {
		return
	}

	parts := make([]string, len(body))
	var seen [6]bool
	for i, p := range body {
		parts[i] = p.blk.Text
		seen[p.blk.Kind] = true
	}
	bodyText := strings.Join(parts, "\n\n")
	text := bodyText
	if em.prefix != "" {
		text = em.prefix + "\n\n" + bodyText
	}

	var kinds []BlockKind
	for k, ok := range seen {
		if ok {
			kinds = append(kinds, BlockKind(k))
		}
	}

	rec := ChunkRecord{
		Index:            em.index,
		Text:             text,
		CharCount:        utf8.RuneCountInString(text),
		HeadingPath:      body[0].path,
		BlockKinds:       kinds,
		OverlapPrefixLen: utf8.RuneCountInString(em.prefix),
		Span:             SourceSpan{Start: em.cursor, End: body[len(body)-1].blk.End},
	}
	rec.Oversized = rec.CharCount > em.opts.MaxSize
	em.cursor = rec.Span.End
	em.index++
	em.emit(rec)

	em.prefix = overlapSuffix(bodyText, em.opts.OverlapSize)
	em.blocks = nil
	em.size = utf8.RuneCountInString(em.prefix)
	for _, c := range carried {
		em.append(c.blk, c.path)
	}
}

func (em *emitter) emit(rec ChunkRecord) {
	if em.held != nil {
		em.deliver(*em.held)
	}
	em.held = &rec
}

func (em *emitter) deliver(rec ChunkRecord) {
	if em.stopped {
		return
	}
	rec.Images = imagesInSpan(em.doc.Images, rec.Span)
	if !em.yield(rec) {
		em.stopped = true
	}
}

// finish flushes the remaining working chunk and extends the final record's
// span to the end of the document so spans cover trailing blank input.
func (em *emitter) finish(docLen int) {
	em.flush(false)
	if em.held != nil {
		em.held.Span.End = docLen
		em.deliver(*em.held)
		em.held = nil
	}
}

// abort releases the buffered record after a cancelled pass. Its span ends
// at its own last block; everything delivered stays valid.
func (em *emitter) abort() {
	if em.held != nil {
		em.deliver(*em.held)
		em.held = nil
	}
}

func imagesInSpan(refs []ImageRef, span SourceSpan) []ImageRef {
	var out []ImageRef
	for _, ref := range refs {
		if ref.Start >= span.Start && ref.Start < span.End {
			out = append(out, ref)
		}
	}
	return out
}
