package chunker

import (
	"context"
	"unicode/utf8"
)

// assembleMode tunes the shared assembly loop per strategy.
type assembleMode int

const (
	// modeHybrid enforces the size ceiling hard; headings flush only
	// through the ceiling tie-break.
	modeHybrid assembleMode = iota
	// modeSemantic flushes at heading boundaries once the floor is met and
	// treats the ceiling as a soft hint while the chunk is under the floor.
	modeSemantic
	// modeRecursive always flushes at headings; blocks arrive pre-split so
	// no non-atomic block exceeds the ceiling.
	modeRecursive
)

// assemble is the core single-pass state machine. For each block it decides
// to accumulate, flush, or force-append, per the configured mode.
func (e *Engine) assemble(ctx context.Context, blocks []Block, em *emitter, mode assembleMode) error {
	var tracker headingTracker
	for _, blk := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if blk.Kind == KindHeading {
			tracker.observe(blk.Level, headingTitle(blk.Text))
			switch mode {
			case modeSemantic:
				if !em.empty() && em.size >= e.opts.MinSize {
					em.flush(true)
				}
			case modeRecursive:
				if !em.empty() {
					em.flush(true)
				}
			}
		}
		path := tracker.path()
		bsize := utf8.RuneCountInString(blk.Text)

		switch {
		case blk.Atomic && bsize > e.opts.MaxSize:
			// An atomic block too large to fit anywhere becomes its own
			// chunk; whatever accumulated so far is flushed first.
			em.flush(true)
			em.append(blk, path)
			em.flush(true)

		case em.wouldExceed(bsize):
			switch {
			case mode == modeSemantic && em.size < e.opts.MinSize:
				// Soft ceiling: keep growing until a structural boundary.
				em.append(blk, path)
			case em.size >= e.opts.MinSize:
				em.flush(true)
				em.append(blk, path)
			default:
				// The floor wins over the ceiling for all but the final
				// chunk: take the block and flush before the violation
				// compounds.
				em.append(blk, path)
				em.flush(true)
			}

		default:
			em.append(blk, path)
		}
	}
	return nil
}
