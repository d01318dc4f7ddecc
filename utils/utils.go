// Package utils provides small helpers shared by the CLI and the TUI.
package utils

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdownExtensions = []string{
	".md", ".mdown", ".mkdn", ".mkd", ".markdown",
}

// ExpandPath expands a tilde prefix and environment-unaware relative paths
// into an absolute path. Returns the input unchanged when expansion fails.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	if abs, err := filepath.Abs(s); err == nil {
		return abs
	}
	return s
}

// IsMarkdownFile reports whether the path has a markdown extension.
func IsMarkdownFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range markdownExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// IsHTMLFile reports whether the path has an HTML extension.
func IsHTMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm" || ext == ".xhtml"
}

// MarkdownToHTML renders markdown to HTML so the sentence extractor can
// treat every source uniformly.
func MarkdownToHTML(content string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("unable to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// RemoveFrontmatter strips a leading YAML frontmatter block, if present.
func RemoveFrontmatter(b []byte) []byte {
	if !bytes.HasPrefix(b, []byte("---\n")) {
		return b
	}
	rest := b[4:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return b
	}
	rest = rest[end+len("\n---"):]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		return rest[i+1:]
	}
	return nil
}

// GlamourStyle returns the glamour style option for the given style name,
// which may also be a path to a custom JSON style.
func GlamourStyle(style string) glamour.TermRendererOption {
	if style == styles.AutoStyle {
		return glamour.WithAutoStyle()
	}
	if styles.DefaultStyles[style] != nil {
		return glamour.WithStandardStyle(style)
	}
	return glamour.WithStylesFromJSONFile(ExpandPath(style))
}
