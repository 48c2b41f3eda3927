package chunker

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestFixed_CutsAtExactCapacity(t *testing.T) {
	doc := strings.Repeat("x", 250) + "\n"
	e := mustEngine(t, Options{MinSize: 50, MaxSize: 100, Strategy: StrategyFixed})

	records := chunkDoc(t, e, doc)
	if len(records) != 3 {
		t.Fatalf("got %d chunks, want 3", len(records))
	}

	wantCounts := []int{100, 100, 50}
	for i, rec := range records {
		if rec.CharCount != wantCounts[i] {
			t.Errorf("chunk %d CharCount = %d, want %d", i, rec.CharCount, wantCounts[i])
		}
	}

	var rebuilt strings.Builder
	for _, rec := range records {
		rebuilt.WriteString(rec.Text)
	}
	if rebuilt.String() != strings.Repeat("x", 250) {
		t.Error("fixed chunks should concatenate back to the source text")
	}

	checkSpanCoverage(t, doc, records)
}

func TestFixed_AtomicBlockKeptWhole(t *testing.T) {
	code := "```\n" + strings.Repeat("x", 120) + "\n```"
	doc := para(50) + "\n\n" + code + "\n\n" + para(30) + "\n"
	e := mustEngine(t, Options{MinSize: 20, MaxSize: 100, Strategy: StrategyFixed})

	records := chunkDoc(t, e, doc)

	var codeChunks int
	for _, rec := range records {
		if !strings.Contains(rec.Text, "```") {
			continue
		}
		codeChunks++
		if rec.Text != code {
			t.Errorf("code block should stand alone and whole, got %q", rec.Text)
		}
		if !rec.Oversized {
			t.Error("whole atomic block above the ceiling should be marked Oversized")
		}
	}
	if codeChunks != 1 {
		t.Fatalf("code block split across %d chunks, want 1", codeChunks)
	}

	checkSpanCoverage(t, doc, records)
}

func TestFixed_OverlapFillsBudget(t *testing.T) {
	// With OverlapSize at MaxSize-1 the carried prefix can consume the whole
	// capacity of the next chunk. The pass must still terminate: the prefix
	// is dropped rather than stalling accumulation.
	doc := para(99) + "\n\n" + para(200) + "\n"
	e := mustEngine(t, Options{MinSize: 100, MaxSize: 100, OverlapSize: 99, Strategy: StrategyFixed})

	type result struct {
		records []ChunkRecord
		err     error
	}
	done := make(chan result, 1)
	go func() {
		records, err := e.Chunk(context.Background(), Document{Markdown: doc})
		done <- result{records, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("fixed-strategy pass did not terminate")
	}
	if res.err != nil {
		t.Fatalf("Chunk() error = %v", res.err)
	}

	if len(res.records) != 3 {
		t.Fatalf("got %d chunks, want 3", len(res.records))
	}
	for i, want := range []int{99, 100, 100} {
		if got := res.records[i].CharCount; got != want {
			t.Errorf("chunk %d CharCount = %d, want %d", i, got, want)
		}
	}
	checkSpanCoverage(t, doc, res.records)
}

func TestSemantic_FlushesAtHeadings(t *testing.T) {
	doc := "# A\n\n" + para(60) + "\n\n## B\n\n" + para(60) + "\n"

	semantic := mustEngine(t, Options{MinSize: 30, MaxSize: 500, Strategy: StrategySemantic})
	records := chunkDoc(t, semantic, doc)
	if len(records) != 2 {
		t.Fatalf("semantic: got %d chunks, want 2", len(records))
	}
	if !strings.HasPrefix(records[0].Text, "# A") {
		t.Errorf("chunk 0 starts with %q, want first section", records[0].Text[:4])
	}
	if !strings.HasPrefix(records[1].Text, "## B") {
		t.Errorf("chunk 1 starts with %q, want second section", records[1].Text[:4])
	}
	if got := records[1].HeadingPath.String(); got != "# A > ## B" {
		t.Errorf("chunk 1 heading path = %q, want %q", got, "# A > ## B")
	}
	checkSpanCoverage(t, doc, records)

	// Hybrid keeps the same document in one chunk: both sections fit under
	// the ceiling and headings alone do not force a boundary.
	hybrid := mustEngine(t, Options{MinSize: 30, MaxSize: 500, Strategy: StrategyHybrid})
	if records := chunkDoc(t, hybrid, doc); len(records) != 1 {
		t.Errorf("hybrid: got %d chunks, want 1", len(records))
	}
}

func TestSemantic_HeadingBelowFloorDoesNotFlush(t *testing.T) {
	doc := "# A\n\n" + para(10) + "\n\n## B\n\n" + para(10) + "\n"
	e := mustEngine(t, Options{MinSize: 100, MaxSize: 500, Strategy: StrategySemantic})

	records := chunkDoc(t, e, doc)
	if len(records) != 1 {
		t.Fatalf("got %d chunks, want 1 (floor not met at heading)", len(records))
	}
}

func TestSemantic_SoftCeiling(t *testing.T) {
	// With the chunk under the floor, the ceiling is a hint only: the chunk
	// grows past MaxSize rather than splitting at an arbitrary point.
	doc := para(60) + "\n\n" + para(60) + "\n\n" + para(60) + "\n"
	e := mustEngine(t, Options{MinSize: 100, MaxSize: 105, Strategy: StrategySemantic})

	records := chunkDoc(t, e, doc)
	if len(records) != 2 {
		t.Fatalf("got %d chunks, want 2", len(records))
	}
	if records[0].CharCount != 122 {
		t.Errorf("chunk 0 CharCount = %d, want 122", records[0].CharCount)
	}
	if !records[0].Oversized {
		t.Error("soft-ceiling chunk above MaxSize should be marked Oversized")
	}
}

func TestRecursive_FlushesAtEveryHeading(t *testing.T) {
	doc := "# A\n\nshort one.\n\n# B\n\nshort two.\n\n# C\n\nshort three.\n"
	e := mustEngine(t, Options{MinSize: 5, MaxSize: 500, Strategy: StrategyRecursive})

	records := chunkDoc(t, e, doc)
	if len(records) != 3 {
		t.Fatalf("got %d chunks, want 3 (one per section)", len(records))
	}
	for i, want := range []string{"# A", "# B", "# C"} {
		if !strings.HasPrefix(records[i].Text, want) {
			t.Errorf("chunk %d starts with %q, want %q", i, records[i].Text[:3], want)
		}
	}
	checkSpanCoverage(t, doc, records)
}

func TestRecursive_LongParagraphStaysBounded(t *testing.T) {
	doc := "# T\n\n" + strings.Repeat("Alpha beta gamma delta. ", 40) + "\n"
	e := mustEngine(t, Options{MinSize: 50, MaxSize: 200, Strategy: StrategyRecursive})

	records := chunkDoc(t, e, doc)
	if len(records) < 2 {
		t.Fatalf("got %d chunks, want several", len(records))
	}
	for i, rec := range records {
		if rec.Oversized {
			t.Errorf("chunk %d oversized with no atomic blocks present", i)
		}
		if rec.CharCount > 200 {
			t.Errorf("chunk %d CharCount = %d, exceeds ceiling", i, rec.CharCount)
		}
	}
	checkSpanCoverage(t, doc, records)
}

func TestSplitBlock(t *testing.T) {
	text := strings.Repeat("Alpha beta gamma delta. ", 12)
	blk := Block{Kind: KindParagraph, Text: text, Start: 10, End: 10 + len(text)}

	pieces := splitBlock(blk, 100)
	if len(pieces) < 3 {
		t.Fatalf("got %d pieces, want at least 3", len(pieces))
	}

	var rebuilt strings.Builder
	offset := blk.Start
	for i, p := range pieces {
		if n := utf8.RuneCountInString(p.Text); n > 100 {
			t.Errorf("piece %d is %d runes, exceeds limit", i, n)
		}
		if p.Start != offset {
			t.Errorf("piece %d starts at %d, want %d", i, p.Start, offset)
		}
		if p.Kind != KindParagraph {
			t.Errorf("piece %d kind = %v, want paragraph", i, p.Kind)
		}
		// Sentence boundaries are preferred, so pieces end just past ". ".
		if i < len(pieces)-1 && !strings.HasSuffix(p.Text, ". ") {
			t.Errorf("piece %d ends %q, want sentence boundary", i, p.Text[len(p.Text)-5:])
		}
		offset = p.End
		rebuilt.WriteString(p.Text)
	}
	if rebuilt.String() != text {
		t.Error("pieces should concatenate back to the original block text")
	}
	if last := pieces[len(pieces)-1].End; last != blk.End {
		t.Errorf("last piece ends at %d, want %d", last, blk.End)
	}
}

func TestSplitBlock_HardCutUnbrokenRun(t *testing.T) {
	text := strings.Repeat("x", 250)
	blk := Block{Kind: KindParagraph, Text: text, Start: 0, End: 250}

	pieces := splitBlock(blk, 100)
	if len(pieces) != 3 {
		t.Fatalf("got %d pieces, want 3", len(pieces))
	}
	for i, want := range []int{100, 100, 50} {
		if got := utf8.RuneCountInString(pieces[i].Text); got != want {
			t.Errorf("piece %d is %d runes, want %d", i, got, want)
		}
	}
}

func TestSplitBlock_WordFallback(t *testing.T) {
	text := strings.Repeat("word ", 50) // no sentence punctuation
	blk := Block{Kind: KindParagraph, Text: text, Start: 0, End: len(text)}

	for i, p := range splitBlock(blk, 30) {
		if n := utf8.RuneCountInString(p.Text); n > 30 {
			t.Errorf("piece %d is %d runes, exceeds limit", i, n)
		}
		if strings.Contains(strings.TrimSuffix(p.Text, " "), "  ") {
			t.Errorf("piece %d mangled spacing: %q", i, p.Text)
		}
		if trimmed := strings.TrimSuffix(p.Text, " "); !strings.HasSuffix(trimmed, "word") {
			t.Errorf("piece %d cut mid word: %q", i, p.Text)
		}
	}
}

func TestExplodeBlocks_PreservesSmallAndAtomic(t *testing.T) {
	code := "```\n" + strings.Repeat("x", 300) + "\n```"
	blocks := []Block{
		{Kind: KindHeading, Level: 1, Text: "# T", Start: 0, End: 3},
		{Kind: KindParagraph, Text: "short.", Start: 5, End: 11},
		{Kind: KindCode, Atomic: true, Text: code, Start: 13, End: 13 + len(code)},
	}

	out := explodeBlocks(blocks, 100)
	if len(out) != 3 {
		t.Fatalf("got %d blocks, want 3 unchanged", len(out))
	}
	for i := range blocks {
		if out[i].Text != blocks[i].Text {
			t.Errorf("block %d text changed", i)
		}
	}
}

func TestExplodeBlocks_SplitsOversizedParagraph(t *testing.T) {
	long := strings.Repeat("One sentence here. ", 20)
	blocks := []Block{{Kind: KindParagraph, Text: long, Start: 0, End: len(long)}}

	out := explodeBlocks(blocks, 100)
	if len(out) < 2 {
		t.Fatalf("got %d blocks, want the paragraph split", len(out))
	}
	for i, b := range out {
		if n := utf8.RuneCountInString(b.Text); n > 100 {
			t.Errorf("block %d is %d runes, exceeds limit", i, n)
		}
	}
}

func TestLastSentenceBoundary(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"One. Two. Three", 10},
		{"Question? Yes", 10},
		{"Loud! Quiet", 6},
		{"no punctuation here", -1},
		{"trailing dot.", -1},
		{"line end.\nnext", 10},
		{"", -1},
	}
	for _, tt := range tests {
		if got := lastSentenceBoundary(tt.s); got != tt.want {
			t.Errorf("lastSentenceBoundary(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}
