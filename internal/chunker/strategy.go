package chunker

import (
	"context"
	"strings"
	"unicode/utf8"
)

// assembleFixed treats the document as a flat character stream and cuts
// strictly at MaxSize boundaries. Block structure is ignored except for the
// atomic exception: code blocks and tables are still kept whole.
func (e *Engine) assembleFixed(ctx context.Context, blocks []Block, em *emitter) error {
	var tracker headingTracker
	for _, blk := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if blk.Kind == KindHeading {
			tracker.observe(blk.Level, headingTitle(blk.Text))
		}
		path := tracker.path()

		if blk.Atomic {
			bsize := utf8.RuneCountInString(blk.Text)
			if !em.empty() && em.wouldExceed(bsize) {
				em.flush(true)
			}
			em.append(blk, path)
			if bsize > e.opts.MaxSize {
				em.flush(true)
			}
			continue
		}

		rest := blk.Text
		off := blk.Start
		for rest != "" {
			join := 0
			if em.size > 0 {
				join = 2
			}
			capacity := e.opts.MaxSize - em.size - join
			if capacity <= 0 {
				if em.empty() {
					// The overlap prefix alone exhausted the budget. Drop it
					// so the pass keeps advancing.
					em.clearPrefix()
					continue
				}
				em.flush(true)
				continue
			}
			runes := []rune(rest)
			if len(runes) <= capacity {
				em.append(Block{Kind: blk.Kind, Level: blk.Level, Text: rest, Start: off, End: blk.End}, path)
				break
			}
			piece := string(runes[:capacity])
			em.append(Block{Kind: blk.Kind, Text: piece, Start: off, End: off + len(piece)}, path)
			em.flush(true)
			off += len(piece)
			rest = string(runes[capacity:])
		}
		if em.size >= e.opts.MaxSize {
			em.flush(true)
		}
	}
	return nil
}

// explodeBlocks pre-splits oversized divisible blocks for the recursive
// strategy. Separators are applied in priority order: heading and blank
// line are already block boundaries, so only sentence and whitespace splits
// happen here, and only while a piece still exceeds maxSize.
func explodeBlocks(blocks []Block, maxSize int) []Block {
	out := make([]Block, 0, len(blocks))
	for _, blk := range blocks {
		if blk.Atomic || blk.Kind == KindHeading || utf8.RuneCountInString(blk.Text) <= maxSize {
			out = append(out, blk)
			continue
		}
		out = append(out, splitBlock(blk, maxSize)...)
	}
	return out
}

// splitBlock cuts a divisible block into pieces of at most maxSize runes,
// preferring blank-line, then sentence, then line, then whitespace
// boundaries, falling back to a hard cut for unbroken runs.
func splitBlock(blk Block, maxSize int) []Block {
	runes := []rune(blk.Text)
	var out []Block
	startRune := 0
	startByte := 0
	for startRune < len(runes) {
		if len(runes)-startRune <= maxSize {
			out = append(out, subBlock(blk, startByte, blk.End-blk.Start))
			break
		}
		window := string(runes[startRune : startRune+maxSize])
		cut := len(window)
		if p := strings.LastIndex(window, "\n\n"); p > 0 {
			cut = p + 2
		} else if p := lastSentenceBoundary(window); p > 0 {
			cut = p
		} else if p := strings.LastIndex(window, "\n"); p > 0 {
			cut = p + 1
		} else if p := strings.LastIndex(window, " "); p > 0 {
			cut = p + 1
		}
		out = append(out, subBlock(blk, startByte, startByte+cut))
		startByte += cut
		startRune += utf8.RuneCountInString(window[:cut])
	}
	return out
}

// subBlock slices a block by relative byte offsets, keeping kind and level.
func subBlock(blk Block, from, to int) Block {
	return Block{
		Kind:  blk.Kind,
		Level: blk.Level,
		Text:  blk.Text[from:to],
		Start: blk.Start + from,
		End:   blk.Start + to,
	}
}

// lastSentenceBoundary returns the byte index just past the last
// sentence-ending punctuation followed by whitespace, or -1.
func lastSentenceBoundary(s string) int {
	for i := len(s) - 1; i > 0; i-- {
		if (s[i] == ' ' || s[i] == '\n') && isSentenceEnd(s[i-1]) {
			return i + 1
		}
	}
	return -1
}

func isSentenceEnd(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}
