package chunker

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a heading path.
type Heading struct {
	Level int    `json:"level"`
	Title string `json:"title"`
}

// HeadingPath is the ordered ancestry of headings active at a point in the
// document, outermost first.
type HeadingPath []Heading

// String renders the path as "# Title > ## Subtitle".
func (p HeadingPath) String() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, h := range p {
		parts[i] = fmt.Sprintf("%s %s", strings.Repeat("#", h.Level), h.Title)
	}
	return strings.Join(parts, " > ")
}

// Titles returns just the heading titles, outermost first.
func (p HeadingPath) Titles() []string {
	titles := make([]string, len(p))
	for i, h := range p {
		titles[i] = h.Title
	}
	return titles
}

// headingTracker maintains the active heading stack as blocks are consumed
// left-to-right. One tracker per document pass; never shared.
type headingTracker struct {
	stack HeadingPath
}

// observe updates the stack for a heading of the given level: entries of
// equal or deeper level are popped, then the heading is pushed.
func (t *headingTracker) observe(level int, title string) {
	for len(t.stack) > 0 && t.stack[len(t.stack)-1].Level >= level {
		t.stack = t.stack[:len(t.stack)-1]
	}
	t.stack = append(t.stack, Heading{Level: level, Title: title})
}

// path returns a copy of the current stack, safe to retain across updates.
func (t *headingTracker) path() HeadingPath {
	out := make(HeadingPath, len(t.stack))
	copy(out, t.stack)
	return out
}

var inlineMarkdown = goldmark.New()

// inlineText renders a markdown fragment to plain text by walking the
// goldmark AST and collecting text nodes, stripping emphasis, links and
// code spans.
func inlineText(src string) string {
	content := []byte(src)
	root := inlineMarkdown.Parser().Parse(text.NewReader(content))

	var b strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// headingTitle extracts the plain-text title of a heading block.
func headingTitle(blockText string) string {
	t := strings.TrimLeft(strings.TrimSpace(blockText), "#")
	return inlineText(strings.TrimSpace(t))
}

// DocumentTitle derives a document title: the first level-1 heading, else the
// first level-2 heading, else the filename with its extension removed and
// words capitalized.
func DocumentTitle(markdown, filename string) string {
	var firstH2 string
	for _, blk := range parseBlocks(markdown, false) {
		if blk.Kind != KindHeading {
			continue
		}
		switch blk.Level {
		case 1:
			return headingTitle(blk.Text)
		case 2:
			if firstH2 == "" {
				firstH2 = headingTitle(blk.Text)
			}
		}
	}
	if firstH2 != "" {
		return firstH2
	}
	return titleFromFilename(filename)
}

func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
