package chunker

import "strings"

// sourceLine is one physical line of the input, with byte offsets.
// end excludes the trailing newline.
type sourceLine struct {
	start int
	end   int
	text  string
}

func splitLines(src string) []sourceLine {
	var lines []sourceLine
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lines = append(lines, sourceLine{start: start, end: i, text: src[start:i]})
			start = i + 1
		}
	}
	if start < len(src) {
		lines = append(lines, sourceLine{start: start, end: len(src), text: src[start:]})
	}
	return lines
}

func isBlankLine(s string) bool {
	return strings.TrimSpace(s) == ""
}

// headingLevel returns the ATX heading level (1-6) of a line, or 0.
func headingLevel(s string) int {
	t := strings.TrimLeft(s, " ")
	if len(s)-len(t) > 3 {
		return 0
	}
	n := 0
	for n < len(t) && t[n] == '#' {
		n++
	}
	if n < 1 || n > 6 {
		return 0
	}
	if n == len(t) || t[n] == ' ' || t[n] == '\t' {
		return n
	}
	return 0
}

// fenceMarker returns the opening fence run ("```" or "~~~", possibly longer)
// of a line, or "".
func fenceMarker(s string) string {
	t := strings.TrimLeft(s, " \t")
	for _, c := range []byte{'`', '~'} {
		n := 0
		for n < len(t) && t[n] == c {
			n++
		}
		if n >= 3 {
			return t[:n]
		}
	}
	return ""
}

// closesFence reports whether a line closes a fence opened with marker.
func closesFence(s, marker string) bool {
	t := strings.TrimSpace(s)
	if len(t) < len(marker) {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] != marker[0] {
			return false
		}
	}
	return len(t) >= len(marker)
}

func isPipeRow(s string) bool {
	return strings.HasPrefix(strings.TrimLeft(s, " \t"), "|")
}

// isTableSeparator matches the header/body separator row of a pipe table,
// e.g. "| --- | :---: |".
func isTableSeparator(s string) bool {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "|") {
		return false
	}
	hasDash := false
	for _, r := range t {
		switch r {
		case '|', ':', ' ', '\t':
		case '-':
			hasDash = true
		default:
			return false
		}
	}
	return hasDash
}

// isListItem matches bulleted ("- ", "* ", "+ ") and numbered ("1. ", "2) ")
// list item lines at any indentation.
func isListItem(s string) bool {
	t := strings.TrimLeft(s, " \t")
	if len(t) >= 2 && (t[0] == '-' || t[0] == '*' || t[0] == '+') && (t[1] == ' ' || t[1] == '\t') {
		return true
	}
	n := 0
	for n < len(t) && t[n] >= '0' && t[n] <= '9' {
		n++
	}
	if n == 0 || n >= len(t) {
		return false
	}
	if t[n] != '.' && t[n] != ')' {
		return false
	}
	return n+1 < len(t) && (t[n+1] == ' ' || t[n+1] == '\t')
}

func isIndented(s string) bool {
	return strings.HasPrefix(s, "  ") || strings.HasPrefix(s, "\t")
}

func isQuoteLine(s string) bool {
	return strings.HasPrefix(strings.TrimLeft(s, " \t"), ">")
}

// startsTable reports whether lines[i] begins a pipe table (header row
// followed by a separator row).
func startsTable(lines []sourceLine, i int) bool {
	return isPipeRow(lines[i].text) && i+1 < len(lines) && isTableSeparator(lines[i+1].text)
}

// parseBlocks tokenizes markdown into an ordered block sequence. Parsing
// never fails: anything unrecognized degrades to a paragraph block.
// Blank-line-only regions produce no block but still advance offsets.
func parseBlocks(src string, atomicLists bool) []Block {
	lines := splitLines(src)
	var blocks []Block
	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case isBlankLine(line.text):
			i++

		case fenceMarker(line.text) != "":
			marker := fenceMarker(line.text)
			j := i + 1
			for j < len(lines) && !closesFence(lines[j].text, marker) {
				j++
			}
			if j < len(lines) {
				j++ // include the closing fence; unterminated fences run to EOF
			}
			end := lines[j-1].end
			blocks = append(blocks, Block{
				Kind:   KindCode,
				Text:   src[line.start:end],
				Atomic: true,
				Start:  line.start,
				End:    end,
			})
			i = j

		case headingLevel(line.text) > 0:
			blocks = append(blocks, Block{
				Kind:  KindHeading,
				Level: headingLevel(line.text),
				Text:  line.text,
				Start: line.start,
				End:   line.end,
			})
			i++

		case startsTable(lines, i):
			j := i
			for j < len(lines) && isPipeRow(lines[j].text) {
				j++
			}
			end := lines[j-1].end
			blocks = append(blocks, Block{
				Kind:   KindTable,
				Text:   src[line.start:end],
				Atomic: true,
				Start:  line.start,
				End:    end,
			})
			i = j

		case isListItem(line.text):
			j, hasCode := consumeList(lines, i)
			end := lines[j-1].end
			blocks = append(blocks, Block{
				Kind: KindList,
				Text: src[line.start:end],
				// A list with an embedded fenced code block is kept whole
				// even when lists are otherwise divisible, so the code block
				// can never be split across chunks.
				Atomic: atomicLists || hasCode,
				Start:  line.start,
				End:    end,
			})
			i = j

		case isQuoteLine(line.text):
			j := i
			for j < len(lines) && isQuoteLine(lines[j].text) {
				j++
			}
			end := lines[j-1].end
			blocks = append(blocks, Block{
				Kind:  KindQuote,
				Text:  src[line.start:end],
				Start: line.start,
				End:   end,
			})
			i = j

		default:
			j := i
			for j < len(lines) && isParagraphLine(lines, j) {
				j++
			}
			if j == i {
				j = i + 1
			}
			end := lines[j-1].end
			blocks = append(blocks, Block{
				Kind:  KindParagraph,
				Text:  src[line.start:end],
				Start: line.start,
				End:   end,
			})
			i = j
		}
	}
	return blocks
}

// isParagraphLine reports whether lines[j] continues a paragraph run.
func isParagraphLine(lines []sourceLine, j int) bool {
	t := lines[j].text
	if isBlankLine(t) || headingLevel(t) > 0 || fenceMarker(t) != "" ||
		isListItem(t) || isQuoteLine(t) || startsTable(lines, j) {
		return false
	}
	return true
}

// consumeList returns the index one past the last line of the list run
// starting at i, and whether the run contains an embedded fenced code block.
// Blank lines inside a list are kept as long as another item follows.
func consumeList(lines []sourceLine, i int) (next int, hasCode bool) {
	j := i + 1
	last := i + 1
	for j < len(lines) {
		t := lines[j].text
		switch {
		case isListItem(t):
			j++
			last = j
		case isBlankLine(t):
			// Lookahead: a blank line only continues the list when the next
			// non-blank line is another item or an indented continuation.
			k := j
			for k < len(lines) && isBlankLine(lines[k].text) {
				k++
			}
			if k < len(lines) && (isListItem(lines[k].text) || isIndented(lines[k].text)) {
				j = k
			} else {
				return last, hasCode
			}
		case isIndented(t):
			if m := fenceMarker(t); m != "" {
				hasCode = true
				j++
				for j < len(lines) && !closesFence(lines[j].text, m) {
					j++
				}
				if j < len(lines) {
					j++
				}
			} else {
				j++
			}
			last = j
		default:
			return last, hasCode
		}
	}
	return last, hasCode
}
