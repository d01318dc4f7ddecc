package extract

import (
	"reflect"
	"strings"
	"testing"
)

// TestSentencesBasic tests terminator splitting on simple prose.
func TestSentencesBasic(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "two sentences in one paragraph",
			content:  `<p>Hello world. This is a test!</p>`,
			expected: []string{"Hello world.", "This is a test!"},
		},
		{
			name:     "question mark terminates",
			content:  `<p>Does this work? It should.</p>`,
			expected: []string{"Does this work?", "It should."},
		},
		{
			name:     "comma splits clauses",
			content:  `<p>First clause here, second clause here.</p>`,
			expected: []string{"First clause here,", "second clause here."},
		},
		{
			name:     "heading without terminator ends at block boundary",
			content:  `<h1>Article Title</h1><p>Body text here.</p>`,
			expected: []string{"Article Title", "Body text here."},
		},
		{
			name:     "list items split",
			content:  `<ul><li>First item</li><li>Second item</li></ul>`,
			expected: []string{"First item", "Second item"},
		},
		{
			name:     "cjk terminators",
			content:  `<p>你好世界。这是测试！</p>`,
			expected: []string{"你好世界。", "这是测试！"},
		},
		{
			name:     "trailing fragment without terminator",
			content:  `<p>No punctuation at all</p>`,
			expected: []string{"No punctuation at all"},
		},
		{
			name:     "empty content",
			content:  ``,
			expected: nil,
		},
		{
			name:     "whitespace only",
			content:  `<p>   </p>`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(DefaultFilters()).Sentences(tt.content)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Sentences() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

// TestSentencesFilters tests tag exclusion and the include override.
func TestSentencesFilters(t *testing.T) {
	tests := []struct {
		name     string
		filters  Filters
		content  string
		expected []string
	}{
		{
			name:     "script dropped",
			filters:  DefaultFilters(),
			content:  `<script>var tracking = true;</script><p>Visible text here.</p>`,
			expected: []string{"Visible text here."},
		},
		{
			name:     "style dropped",
			filters:  DefaultFilters(),
			content:  `<style>body { color: red; }</style><p>Visible text here.</p>`,
			expected: []string{"Visible text here."},
		},
		{
			name:     "code block dropped",
			filters:  DefaultFilters(),
			content:  `<p>Run the command.</p><pre><code>rm -rf ./build</code></pre>`,
			expected: []string{"Run the command."},
		},
		{
			name:     "include attribute overrides code skip",
			filters:  DefaultFilters(),
			content:  `<pre data-recite="include">Spoken despite the tag.</pre>`,
			expected: []string{"Spoken despite the tag."},
		},
		{
			name:     "navigation always dropped",
			filters:  Filters{},
			content:  `<nav>Home About Contact</nav><p>Real content here.</p>`,
			expected: []string{"Real content here."},
		},
		{
			name:     "figure always dropped",
			filters:  DefaultFilters(),
			content:  `<figure><figcaption>A chart of numbers</figcaption></figure><p>Prose goes on.</p>`,
			expected: []string{"Prose goes on."},
		},
		{
			name:     "code kept when skip disabled",
			filters:  Filters{SkipScripts: true},
			content:  `<p>Prose first.</p><code>readable inline snippet</code>`,
			expected: []string{"Prose first.", "readable inline snippet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.filters).Sentences(tt.content)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Sentences() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

// TestSentencesCleaning tests entity handling, residue stripping, and the
// rejection heuristics.
func TestSentencesCleaning(t *testing.T) {
	tests := []struct {
		name     string
		filters  Filters
		content  string
		expected []string
	}{
		{
			name:     "entities unescaped",
			filters:  DefaultFilters(),
			content:  `<p>Fish &amp; chips taste great.</p>`,
			expected: []string{"Fish & chips taste great."},
		},
		{
			name:     "escaped markup stripped as residue",
			filters:  DefaultFilters(),
			content:  `<p>Before &lt;b&gt;middle&lt;/b&gt; after.</p>`,
			expected: []string{"Before middle after."},
		},
		{
			name:     "decorative symbols stripped",
			filters:  DefaultFilters(),
			content:  `<p>Emphasis *with* markdown_residue here.</p>`,
			expected: []string{"Emphasis with markdownresidue here."},
		},
		{
			name:     "too short rejected",
			filters:  DefaultFilters(),
			content:  `<p>A.</p>`,
			expected: nil,
		},
		{
			name:     "numbers only rejected",
			filters:  DefaultFilters(),
			content:  `<p>12345.</p>`,
			expected: nil,
		},
		{
			name:     "overlong rejected",
			filters:  DefaultFilters(),
			content:  `<p>` + strings.Repeat("word ", 120) + `</p>`,
			expected: nil,
		},
		{
			name:     "css color fragment rejected",
			filters:  DefaultFilters(),
			content:  `<p>color: #ff0000</p>`,
			expected: nil,
		},
		{
			name:     "whitespace collapsed",
			filters:  DefaultFilters(),
			content:  "<p>Spread   across\t\twhitespace.</p>",
			expected: []string{"Spread across whitespace."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.filters).Sentences(tt.content)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Sentences() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

// TestLooksLikeCode tests the code heuristics directly.
func TestLooksLikeCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"arrow function", "const f = (x) => x + 1", true},
		{"function keyword", "function() { return x; }", true},
		{"go function", "func main() {", true},
		{"import statement", "import React from 'react'", true},
		{"require call", "const fs = require('fs')", true},
		{"css color", "background: #1e1e2e", true},
		{"css units", "margin: 12px 0", true},
		{"html tag", "wrapped in a <span> element", true},
		{"html entity", "uses &nbsp; for spacing", true},
		{"symbol heavy", "{[(=)]};;={}", true},
		{"plain prose", "The quick brown fox jumps over the lazy dog.", false},
		{"prose with parenthetical", "He arrived late (as usual) and sat down.", false},
		{"prose with number", "Chapter 12 covers the basics.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksLikeCode(tt.input); got != tt.expected {
				t.Errorf("looksLikeCode(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
