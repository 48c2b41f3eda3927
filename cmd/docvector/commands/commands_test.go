package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docvector/internal/chunker"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "docvector" {
		t.Errorf("Use = %q, want %q", cmd.Use, "docvector")
	}

	wanted := []string{"convert", "chunk", "process", "stats", "version"}
	for _, name := range wanted {
		found := false
		for _, sub := range cmd.Commands() {
			if strings.HasPrefix(sub.Use, name) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestVersionCmd_Output(t *testing.T) {
	originalVersion := versionInfo.Version
	originalCommit := versionInfo.Commit
	originalDate := versionInfo.Date
	defer func() {
		versionInfo.Version = originalVersion
		versionInfo.Commit = originalCommit
		versionInfo.Date = originalDate
	}()

	SetVersion("1.2.3", "abc123", "2026-08-30")

	cmd := NewVersionCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	outputStr := output.String()
	expectedParts := []string{
		"docvector 1.2.3",
		"Commit: abc123",
		"Built:  2026-08-30",
	}
	for _, expected := range expectedParts {
		if !strings.Contains(outputStr, expected) {
			t.Errorf("output missing %q, got:\n%s", expected, outputStr)
		}
	}
}

func TestChunkCmd_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	content := "# Title\n\nFirst paragraph with enough words to be worth chunking on its own.\n\nSecond paragraph to keep the document from being trivial.\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cmd := NewChunkCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var records []chunker.ChunkRecord
	if err := json.Unmarshal(output.Bytes(), &records); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, output.String())
	}
	if len(records) == 0 {
		t.Fatal("expected at least one chunk")
	}
	if records[0].Index != 0 {
		t.Errorf("first chunk Index = %d, want 0", records[0].Index)
	}
	if records[len(records)-1].Span.End != len(content) {
		t.Errorf("last chunk span end = %d, want %d", records[len(records)-1].Span.End, len(content))
	}
}

func TestChunkCmd_InvalidStrategy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# T\n\ntext\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cmd := NewChunkCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--strategy", "bogus", path})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() with unknown strategy should fail")
	}
}

func TestChunkCmd_MissingFile(t *testing.T) {
	cmd := NewChunkCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"/nonexistent/doc.md"})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() with missing file should fail")
	}
}

func TestConvertCmd_RejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("text"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cmd := NewConvertCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() with non-PDF input should fail")
	}
}
