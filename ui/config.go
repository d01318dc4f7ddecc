package ui

import "github.com/recite-cli/recite/reading"

// Config contains TUI-specific configuration.
type Config struct {
	EnableMouse bool
	MaxWidth    uint

	// Path of the file being read; empty for URLs and stdin.
	Path string

	// Keep the sentence being read in view.
	AutoScroll bool

	// Extraction filter toggles.
	Filters reading.FilterConfig

	// For debugging the UI.
	StatusTimeout int `env:"RECITE_STATUS_TIMEOUT" envDefault:"2"`
}
