// Package extract converts rendered article HTML into an ordered list of
// prose-only sentences suitable for speech playback.
package extract

import (
	stdhtml "html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Filters controls what the extractor excludes. Filters are applied at
// extraction time only; changing them has no effect on an already extracted
// sentence sequence.
type Filters struct {
	SkipCode          bool // drop pre/code/kbd/samp subtrees
	SkipScripts       bool // drop script/style/noscript/template subtrees
	StripTagResidue   bool // remove literal markup that leaked into text
	StripSpecialChars bool // remove decorative symbol characters
}

// DefaultFilters returns the filter set used when the user has not configured
// anything: everything that is not prose is excluded.
func DefaultFilters() Filters {
	return Filters{
		SkipCode:          true,
		SkipScripts:       true,
		StripTagResidue:   true,
		StripSpecialChars: true,
	}
}

// includeAttr marks an element for inclusion even when its tag is normally
// skipped, e.g. <pre data-recite="include">.
const includeAttr = "data-recite"

// sentence-terminal punctuation, CJK and Latin. A newline also terminates a
// sentence so block boundaries never fuse unrelated fragments.
const terminators = "。！？；，、.!?;,"

var (
	scriptTags = map[string]bool{
		"script": true, "style": true, "noscript": true, "template": true,
	}
	codeTags = map[string]bool{
		"pre": true, "code": true, "kbd": true, "samp": true,
	}
	// Non-prose structure that is never read aloud regardless of filters.
	skippedTags = map[string]bool{
		"head": true, "iframe": true, "embed": true, "object": true,
		"video": true, "audio": true, "canvas": true, "svg": true,
		"form": true, "input": true, "button": true, "select": true,
		"textarea": true, "nav": true, "aside": true, "figure": true,
	}
	// Elements whose end implies a sentence boundary.
	blockTags = map[string]bool{
		"p": true, "div": true, "section": true, "article": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"li": true, "blockquote": true, "tr": true, "td": true, "th": true,
		"dt": true, "dd": true, "br": true, "hr": true,
	}

	tagResidueRegex   = regexp.MustCompile(`</?[a-zA-Z][^<>]*>`)
	entityResidueRegex = regexp.MustCompile(`&#?[a-zA-Z0-9]+;`)
	specialCharRegex  = regexp.MustCompile("[*_~`|\\\\^<>]")
	spaceRegex        = regexp.MustCompile(`\s+`)
)

// Extractor turns HTML content into sentences. An Extractor is cheap to
// create and safe for reuse; each Sentences call is independent.
type Extractor struct {
	filters Filters

	minRunes int
	maxRunes int
}

// New creates an extractor with the given filters.
func New(filters Filters) *Extractor {
	return &Extractor{
		filters:  filters,
		minRunes: 3,
		maxRunes: 500,
	}
}

// Sentences extracts the ordered sentence sequence from content. The result
// is empty when the content carries no prose; callers decline to start
// playback in that case.
func (e *Extractor) Sentences(content string) []string {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		// html.Parse almost never fails; treat a failure as prose-free input.
		return nil
	}

	var b strings.Builder
	e.flatten(root, &b)

	return e.split(b.String())
}

// flatten walks the parsed tree and appends prose text, inserting newlines at
// block boundaries.
func (e *Extractor) flatten(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		text := n.Data
		if strings.TrimSpace(text) != "" {
			b.WriteString(text)
			b.WriteByte(' ')
		}
		return
	case html.ElementNode:
		if e.skips(n) {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.flatten(c, b)
	}

	if n.Type == html.ElementNode && blockTags[n.Data] {
		b.WriteByte('\n')
	}
}

// skips reports whether an element subtree is excluded from extraction.
func (e *Extractor) skips(n *html.Node) bool {
	tag := strings.ToLower(n.Data)

	excluded := skippedTags[tag] ||
		(e.filters.SkipScripts && scriptTags[tag]) ||
		(e.filters.SkipCode && codeTags[tag])
	if !excluded {
		return false
	}

	for _, attr := range n.Attr {
		if attr.Key == includeAttr && attr.Val == "include" {
			return false
		}
	}
	return true
}

// split cuts flattened text at sentence-terminal punctuation and newlines,
// keeping the terminator with its sentence, then filters the candidates.
func (e *Extractor) split(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		candidate := strings.TrimSpace(current.String())
		current.Reset()
		if cleaned, ok := e.clean(candidate); ok {
			sentences = append(sentences, cleaned)
		}
	}

	for _, r := range text {
		if r == '\n' {
			flush()
			continue
		}
		current.WriteRune(r)
		if strings.ContainsRune(terminators, r) {
			flush()
		}
	}
	flush()

	return sentences
}

// clean normalizes a candidate and applies the rejection heuristics. The
// second return value is false when the candidate is not prose.
func (e *Extractor) clean(candidate string) (string, bool) {
	if candidate == "" {
		return "", false
	}

	candidate = stdhtml.UnescapeString(candidate)
	if e.filters.StripTagResidue {
		candidate = tagResidueRegex.ReplaceAllString(candidate, " ")
		candidate = entityResidueRegex.ReplaceAllString(candidate, " ")
	}
	if e.filters.StripSpecialChars {
		candidate = specialCharRegex.ReplaceAllString(candidate, "")
	}
	candidate = strings.TrimSpace(spaceRegex.ReplaceAllString(candidate, " "))

	runes := len([]rune(candidate))
	switch {
	case runes < e.minRunes, runes > e.maxRunes:
		return "", false
	case !containsLetter(candidate):
		// Rejects purely numeric candidates and symbol/bracket noise alike.
		return "", false
	case looksLikeCode(candidate):
		return "", false
	}

	return candidate, true
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
