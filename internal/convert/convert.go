package convert

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"docvector/internal/chunker"
	"docvector/internal/contextutil"
)

// PageSource produces per-page markdown for a PDF. Satisfied by OCRClient.
type PageSource interface {
	ProcessDocument(ctx context.Context, pdf []byte) ([]OCRPage, error)
}

// Converter turns a PDF into assembled markdown plus extracted image files.
type Converter struct {
	ocr PageSource
}

// NewConverter creates a converter backed by the given page source.
func NewConverter(ocr PageSource) *Converter {
	return &Converter{ocr: ocr}
}

// Result describes the output of a conversion.
type Result struct {
	MarkdownPath string
	ImagesDir    string
	ImageCount   int
}

// Process converts pdfPath and writes <outputDir>/<name>/<name>.md plus an
// images/ subdirectory. Image references in the markdown are rewritten to
// the relative paths of the saved files.
func (c *Converter) Process(ctx context.Context, pdfPath, outputDir string) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	name := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	outputFolder := filepath.Join(outputDir, name)
	imagesDir := filepath.Join(outputFolder, "images")

	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	pages, err := c.ocr.ProcessDocument(ctx, pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", pdfPath, err)
	}

	var sb strings.Builder
	imageCount := 0

	for _, page := range pages {
		pageMarkdown := page.Markdown

		for _, image := range page.Images {
			ext := imageExt(image.ID, image.ImageBase64)
			filename := fmt.Sprintf("image_%d_%d%s", page.Index, imageCount, ext)

			if err := saveBase64Image(image.ImageBase64, filepath.Join(imagesDir, filename)); err != nil {
				return nil, fmt.Errorf("failed to save image %s: %w", image.ID, err)
			}

			relPath := "images/" + filename
			pageMarkdown = strings.ReplaceAll(pageMarkdown, "("+image.ID+")", "("+relPath+")")
			imageCount++
		}

		sb.WriteString(pageMarkdown)
		// Newline between pages prevents words merging without breaking flow.
		sb.WriteString("\n")
	}

	markdown := html.UnescapeString(sb.String())

	mdPath := filepath.Join(outputFolder, name+".md")
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write markdown: %w", err)
	}

	logger.InfoContext(ctx, "converted document",
		"source", pdfPath, "markdown", mdPath, "pages", len(pages), "images", imageCount)

	return &Result{
		MarkdownPath: mdPath,
		ImagesDir:    imagesDir,
		ImageCount:   imageCount,
	}, nil
}

// imageExt picks a file extension from the image ID, falling back to sniffing
// the data URL prefix.
func imageExt(id, imageBase64 string) string {
	switch {
	case strings.HasSuffix(id, ".jpeg"), strings.HasSuffix(id, ".jpg"):
		return ".jpeg"
	case strings.HasSuffix(id, ".png"):
		return ".png"
	case strings.Contains(imageBase64, "image/png"):
		return ".png"
	default:
		return ".jpeg"
	}
}

// saveBase64Image decodes base64 image data, stripping any data URL prefix.
func saveBase64Image(data, path string) error {
	if idx := strings.Index(data, ","); idx >= 0 {
		data = data[idx+1:]
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("failed to decode image data: %w", err)
	}

	return os.WriteFile(path, decoded, 0o644)
}

var imageRefPattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)

// ExtractImageRefs scans markdown for image references and returns them with
// byte offsets into the source, so chunks can carry the images their span
// covers.
func ExtractImageRefs(markdown string) []chunker.ImageRef {
	matches := imageRefPattern.FindAllStringSubmatchIndex(markdown, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]chunker.ImageRef, 0, len(matches))
	for _, m := range matches {
		path := markdown[m[2]:m[3]]
		refs = append(refs, chunker.ImageRef{
			ID:    filepath.Base(path),
			Path:  path,
			Start: m[0],
			End:   m[1],
		})
	}
	return refs
}
