package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile represents a markdown file found during an input scan.
type ScannedFile struct {
	RelPath string // Relative path from the scan root (e.g., "report/report.md")
	Folder  string // Folder path (path components except filename, e.g., "report")
	AbsPath string // Absolute file path
}

// Scanner walks an input directory for markdown files.
type Scanner struct {
	root string
}

// New creates a scanner rooted at dir.
func New(dir string) *Scanner {
	return &Scanner{root: dir}
}

// Scan walks the root directory and returns all markdown files found.
// Hidden directories are skipped.
func (s *Scanner) Scan(ctx context.Context) ([]ScannedFile, error) {
	var scannedFiles []ScannedFile

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) != ".md" {
			return nil
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		// Normalize relative path (use forward slashes for consistency)
		relPath = filepath.ToSlash(relPath)

		folder := filepath.Dir(relPath)
		if folder == "." || folder == "" {
			folder = ""
		} else {
			folder = filepath.ToSlash(folder)
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path for %s: %w", path, err)
		}

		scannedFiles = append(scannedFiles, ScannedFile{
			RelPath: relPath,
			Folder:  folder,
			AbsPath: absPath,
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.root, err)
	}

	return scannedFiles, nil
}
