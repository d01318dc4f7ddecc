package utils

import (
	"path/filepath"
	"strings"
	"testing"
)

// TestIsMarkdownFile tests markdown extension detection.
func TestIsMarkdownFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"article.md", true},
		{"README.markdown", true},
		{"notes.MKD", true},
		{"page.html", false},
		{"binary.wav", false},
		{"no-extension", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsMarkdownFile(tt.path); got != tt.expected {
				t.Errorf("IsMarkdownFile(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

// TestIsHTMLFile tests HTML extension detection.
func TestIsHTMLFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"page.html", true},
		{"page.HTM", true},
		{"page.xhtml", true},
		{"article.md", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsHTMLFile(tt.path); got != tt.expected {
				t.Errorf("IsHTMLFile(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

// TestMarkdownToHTML verifies conversion produces readable block elements.
func TestMarkdownToHTML(t *testing.T) {
	out, err := MarkdownToHTML("# Title\n\nFirst paragraph here.\n")
	if err != nil {
		t.Fatalf("MarkdownToHTML() error: %v", err)
	}
	if !strings.Contains(out, "<h1") {
		t.Errorf("output missing heading element: %q", out)
	}
	if !strings.Contains(out, "<p>First paragraph here.</p>") {
		t.Errorf("output missing paragraph element: %q", out)
	}
}

// TestMarkdownToHTMLPlainText verifies plain text passes through as
// paragraphs.
func TestMarkdownToHTMLPlainText(t *testing.T) {
	out, err := MarkdownToHTML("Just an ordinary sentence.")
	if err != nil {
		t.Fatalf("MarkdownToHTML() error: %v", err)
	}
	if !strings.Contains(out, "Just an ordinary sentence.") {
		t.Errorf("plain text lost in conversion: %q", out)
	}
}

// TestRemoveFrontmatter tests YAML frontmatter stripping.
func TestRemoveFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "frontmatter stripped",
			input:    "---\ntitle: Hello\n---\n# Body\n",
			expected: "# Body\n",
		},
		{
			name:     "no frontmatter untouched",
			input:    "# Body\n",
			expected: "# Body\n",
		},
		{
			name:     "unterminated frontmatter untouched",
			input:    "---\ntitle: Hello\n# Body\n",
			expected: "---\ntitle: Hello\n# Body\n",
		},
		{
			name:     "dashes mid-document untouched",
			input:    "# Body\n---\nmore\n",
			expected: "# Body\n---\nmore\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(RemoveFrontmatter([]byte(tt.input)))
			if got != tt.expected {
				t.Errorf("RemoveFrontmatter() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// TestExpandPath verifies tilde expansion yields an absolute path.
func TestExpandPath(t *testing.T) {
	got := ExpandPath("~/notes.md")
	if strings.HasPrefix(got, "~") {
		t.Errorf("ExpandPath() left the tilde: %q", got)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("ExpandPath() = %q, want absolute", got)
	}
}
