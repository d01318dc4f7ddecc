package main

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

func setupLog() (func() error, error) {
	// Log to a file when requested, otherwise discard. Writing to stderr
	// would corrupt the TUI.
	if logFile := os.Getenv("RECITE_LOGFILE"); logFile != "" {
		if os.Getenv("DEBUG") != "" {
			log.SetLevel(log.DebugLevel)
		}
		f, err := tea.LogToFileWith(logFile, "recite", log.Default())
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		return f.Close, nil
	}
	log.SetOutput(io.Discard)
	return func() error { return nil }, nil
}
