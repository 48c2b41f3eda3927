package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestOverlapSuffix(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want string
	}{
		{
			name: "zero budget",
			text: "anything at all",
			size: 0,
			want: "",
		},
		{
			name: "text within budget returned whole",
			text: "short text",
			size: 50,
			want: "short text",
		},
		{
			name: "sentence boundary inside window",
			text: "First part. Second part.",
			size: 15,
			want: "Second part.",
		},
		{
			name: "window starts exactly on a word",
			text: "hello world foo",
			size: 9,
			want: "world foo",
		},
		{
			name: "word boundary fallback",
			text: "abcdefgh ijklmnop",
			size: 10,
			want: "ijklmnop",
		},
		{
			name: "no boundary yields empty",
			text: "abcdefghijklmnopqrstuvwxyz",
			size: 10,
			want: "",
		},
		{
			name: "trailing whitespace trimmed first",
			text: "some text here   \n",
			size: 50,
			want: "some text here",
		},
		{
			name: "empty text",
			text: "",
			size: 10,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overlapSuffix(tt.text, tt.size); got != tt.want {
				t.Errorf("overlapSuffix(%q, %d) = %q, want %q", tt.text, tt.size, got, tt.want)
			}
		})
	}
}

func TestOverlapSuffix_NeverExceedsBudget(t *testing.T) {
	texts := []string{
		"One sentence here. Another sentence there. And a third one closes it out.",
		strings.Repeat("word ", 100),
		strings.Repeat("x", 500),
	}

	for _, text := range texts {
		for _, size := range []int{10, 25, 60} {
			got := overlapSuffix(text, size)
			if n := utf8.RuneCountInString(got); n > size {
				t.Errorf("overlapSuffix(len %d, %d) returned %d runes", len(text), size, n)
			}
		}
	}
}

func TestOverlapSuffix_NeverStartsMidWord(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog near the river bank today."

	for size := 5; size < 60; size += 7 {
		got := overlapSuffix(text, size)
		if got == "" {
			continue
		}
		if !strings.Contains(" "+text, " "+got) {
			t.Errorf("size %d: suffix %q does not start on a word boundary", size, got)
		}
	}
}

func TestFirstSentenceStart(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"end. Next", 5},
		{"end.  Spaced", 6},
		{"no boundary here", -1},
		{"trailing dot. ", -1},
		{"q! Then", 3},
	}

	for _, tt := range tests {
		if got := firstSentenceStart(tt.in); got != tt.want {
			t.Errorf("firstSentenceStart(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
