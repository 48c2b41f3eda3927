package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docvector/internal/convert"
)

var convertOutputDir string

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <pdf> [pdf...]",
		Short: "Convert PDFs to markdown via OCR",
		Long: `Convert one or more PDF files to markdown using the configured OCR API.
Each PDF produces <output>/<name>/<name>.md plus an images/ subdirectory
with the extracted figures.

Examples:
  docvector convert report.pdf
  docvector convert --output ./output in/*.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: runConvert,
	}

	cmd.Flags().StringVarP(&convertOutputDir, "output", "o", "", "Output directory (default: configured input dir)")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, ctx, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	outputDir := convertOutputDir
	if outputDir == "" {
		outputDir = cfg.InputDir
	}

	conv := convert.NewConverter(convert.NewOCRClient(cfg.OCRBaseURL, cfg.OCRAPIKey, cfg.OCRModel))

	var failures []string
	for _, path := range args {
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return fmt.Errorf("%s is not a PDF", path)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}

		result, err := conv.Process(ctx, path, outputDir)
		if err != nil {
			failures = append(failures, path)
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to convert %s: %v\n", path, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s (%d images)\n",
			path, result.MarkdownPath, result.ImageCount)
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d conversions failed", len(failures), len(args))
	}
	return nil
}
