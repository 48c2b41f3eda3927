package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docvector/internal/chunker"
	"docvector/internal/convert"
)

var (
	chunkMinSize     int
	chunkMaxSize     int
	chunkOverlap     int
	chunkStrategy    string
	chunkAtomicLists bool
	chunkFormat      string
)

// NewChunkCmd creates the chunk command.
func NewChunkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunk <markdown-file>",
		Short: "Chunk a markdown file and print the records",
		Long: `Run the chunking engine on a single markdown file without touching any
storage. Useful for inspecting how a document will be split.

Examples:
  docvector chunk notes.md
  docvector chunk --strategy semantic --max-size 1500 notes.md
  docvector chunk --format text notes.md`,
		Args: cobra.ExactArgs(1),
		RunE: runChunk,
	}

	defaults := chunker.DefaultOptions()
	cmd.Flags().IntVar(&chunkMinSize, "min-size", defaults.MinSize, "Minimum chunk size in characters")
	cmd.Flags().IntVar(&chunkMaxSize, "max-size", defaults.MaxSize, "Maximum chunk size in characters")
	cmd.Flags().IntVar(&chunkOverlap, "overlap", defaults.OverlapSize, "Overlap size in characters")
	cmd.Flags().StringVar(&chunkStrategy, "strategy", string(defaults.Strategy), "Chunking strategy (hybrid, semantic, fixed, recursive)")
	cmd.Flags().BoolVar(&chunkAtomicLists, "atomic-lists", defaults.AtomicLists, "Treat lists as atomic blocks")
	cmd.Flags().StringVar(&chunkFormat, "format", "json", "Output format (json or text)")

	return cmd
}

func runChunk(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	strategy, err := chunker.ParseStrategy(chunkStrategy)
	if err != nil {
		return err
	}

	engine, err := chunker.New(chunker.Options{
		MinSize:     chunkMinSize,
		MaxSize:     chunkMaxSize,
		OverlapSize: chunkOverlap,
		Strategy:    strategy,
		AtomicLists: chunkAtomicLists,
	})
	if err != nil {
		return err
	}

	markdown := string(content)
	records, err := engine.Chunk(cmd.Context(), chunker.Document{
		Source:   path,
		Markdown: markdown,
		Images:   convert.ExtractImageRefs(markdown),
	})
	if err != nil {
		return fmt.Errorf("chunking %s: %w", path, err)
	}

	switch chunkFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "text":
		title := chunker.DocumentTitle(markdown, filepath.Base(path))
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks\n\n", title, len(records))
		for _, rec := range records {
			fmt.Fprintf(cmd.OutOrStdout(), "[%d] %d chars  span=%d..%d  %s\n",
				rec.Index, rec.CharCount, rec.Span.Start, rec.Span.End, rec.HeadingPath)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json or text)", chunkFormat)
	}
}
