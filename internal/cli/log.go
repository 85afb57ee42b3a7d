// Package cli implements the photobook command-line interface.
//
// The commands compose books from photo lists, inspect the template
// catalog, manage the optional feature store and feedback log, and manage
// the local book cache. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - compose: Lay out a photo list as a book (book.json)
//   - templates: List the template catalog
//   - solve: Debug tool for the assignment solver
//   - features: Import and inspect photo features (SQLite)
//   - feedback: Record reviewer feedback on a page
//   - config: Write or print the TOML configuration
//   - cache: Manage the book cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes the pipeline hooks to the log.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Composed book (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
