package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docvector",
		Short: "Process documents into enriched, embedded chunks",
		Long: `docvector converts PDFs to markdown, splits markdown documents into
bounded-size structural chunks, enriches them with AI-generated metadata,
embeds them, and stores the results in SQLite and Qdrant.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewChunkCmd())
	cmd.AddCommand(NewProcessCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
