package chunker

import (
	"testing"
)

func TestHeadingTracker(t *testing.T) {
	var tracker headingTracker

	tracker.observe(1, "A")
	tracker.observe(2, "B")
	if got := tracker.path().String(); got != "# A > ## B" {
		t.Errorf("path = %q, want %q", got, "# A > ## B")
	}

	// A sibling heading replaces the entry at its level.
	tracker.observe(2, "C")
	if got := tracker.path().String(); got != "# A > ## C" {
		t.Errorf("path = %q, want %q", got, "# A > ## C")
	}

	// Deeper heading extends the path.
	tracker.observe(4, "D")
	if got := tracker.path().String(); got != "# A > ## C > #### D" {
		t.Errorf("path = %q, want %q", got, "# A > ## C > #### D")
	}

	// A shallower heading pops everything at or below its level.
	tracker.observe(1, "E")
	if got := tracker.path().String(); got != "# E" {
		t.Errorf("path = %q, want %q", got, "# E")
	}
}

func TestHeadingTracker_PathIsCopy(t *testing.T) {
	var tracker headingTracker
	tracker.observe(1, "A")

	snapshot := tracker.path()
	tracker.observe(1, "B")

	if snapshot.String() != "# A" {
		t.Errorf("earlier snapshot mutated: %q", snapshot.String())
	}
}

func TestHeadingPath_String_Empty(t *testing.T) {
	if got := (HeadingPath{}).String(); got != "" {
		t.Errorf("empty path String() = %q, want empty", got)
	}
}

func TestHeadingPath_Titles(t *testing.T) {
	p := HeadingPath{{Level: 1, Title: "A"}, {Level: 3, Title: "B"}}
	titles := p.Titles()
	if len(titles) != 2 || titles[0] != "A" || titles[1] != "B" {
		t.Errorf("Titles() = %v, want [A B]", titles)
	}
}

func TestHeadingTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"# Plain title", "Plain title"},
		{"## **Bold** title", "Bold title"},
		{"### A [link](https://example.com) here", "A link here"},
		{"#### _emphasis_", "emphasis"},
		{"##   Extra   spacing", "Extra   spacing"},
	}

	for _, tt := range tests {
		if got := headingTitle(tt.in); got != tt.want {
			t.Errorf("headingTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		filename string
		want     string
	}{
		{
			name:     "first H1 wins",
			markdown: "# First\n\ntext\n\n# Second\n",
			filename: "doc.md",
			want:     "First",
		},
		{
			name:     "H2 fallback",
			markdown: "intro\n\n## Subheading\n\ntext\n",
			filename: "doc.md",
			want:     "Subheading",
		},
		{
			name:     "H1 preferred over earlier H2",
			markdown: "## Early\n\n# Main\n",
			filename: "doc.md",
			want:     "Main",
		},
		{
			name:     "filename fallback",
			markdown: "no headings at all\n",
			filename: "user guide.md",
			want:     "User Guide",
		},
		{
			name:     "empty document",
			markdown: "",
			filename: "notes.md",
			want:     "Notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DocumentTitle(tt.markdown, tt.filename); got != tt.want {
				t.Errorf("DocumentTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
