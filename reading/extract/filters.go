package extract

import (
	"regexp"
	"strings"
)

// Code-pattern heuristics. Extraction operates on rendered article bodies, so
// most code arrives inside pre/code and is dropped by tag. These patterns
// catch the rest: inline snippets, stray stylesheet fragments, and markup
// that leaked into text nodes.
var codePatterns = []*regexp.Regexp{
	// function and arrow syntax
	regexp.MustCompile(`=>|function\s*\(|func\s+\w+\s*\(`),
	// import/export/include statements
	regexp.MustCompile(`^\s*(import\s|export\s|#include\b|from\s+['"])`),
	regexp.MustCompile(`\brequire\s*\(`),
	// CSS colors and unit values
	regexp.MustCompile(`#[0-9a-fA-F]{3,8}\b`),
	regexp.MustCompile(`\b\d+(\.\d+)?(px|em|rem|vh|vw|pt)\b`),
	// HTML tag or entity residue
	regexp.MustCompile(`</?[a-zA-Z][^<>]*>`),
	regexp.MustCompile(`&#?[a-zA-Z0-9]+;`),
}

// symbolRunes are characters that rarely occur in prose but dominate code.
const symbolRunes = "{}()[];=<>|&$#\\"

// looksLikeCode reports whether a candidate sentence is more likely a code
// fragment than prose.
func looksLikeCode(s string) bool {
	for _, p := range codePatterns {
		if p.MatchString(s) {
			return true
		}
	}

	// Symbol density: prose stays well under this even with parentheticals.
	symbols := 0
	for _, r := range s {
		if strings.ContainsRune(symbolRunes, r) {
			symbols++
		}
	}
	total := len([]rune(s))
	return total > 0 && float64(symbols)/float64(total) > 0.25
}
