package chunker

import "fmt"

// BlockKind identifies the structural type of a parsed block.
type BlockKind int

const (
	KindHeading BlockKind = iota
	KindParagraph
	KindList
	KindCode
	KindTable
	KindQuote
)

// String returns the lowercase name of the block kind.
func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindList:
		return "list"
	case KindCode:
		return "code"
	case KindTable:
		return "table"
	case KindQuote:
		return "quote"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so block kinds serialize
// as their names in JSON output.
func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *BlockKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "heading":
		*k = KindHeading
	case "paragraph":
		*k = KindParagraph
	case "list":
		*k = KindList
	case "code":
		*k = KindCode
	case "table":
		*k = KindTable
	case "quote":
		*k = KindQuote
	default:
		return fmt.Errorf("unknown block kind %q", text)
	}
	return nil
}

// Block is a contiguous structural unit of the source document.
// Text is the exact source slice [Start, End); blocks are immutable once
// parsed and shared read-only by the assembler.
type Block struct {
	Kind   BlockKind
	Level  int // heading depth 1-6, 0 otherwise
	Text   string
	Atomic bool
	Start  int // byte offset into the source
	End    int // byte offset one past the last content byte
}
