package logging

import (
	"io"
	"log"
	"os"
)

const prefix = "statusnotify "

// New logs to stderr so command output on stdout stays parseable.
func New() *log.Logger {
	return NewWriter(os.Stderr)
}

// NewWriter builds the program logger on top of an arbitrary writer.
func NewWriter(w io.Writer) *log.Logger {
	if w == nil {
		w = io.Discard
	}
	return log.New(w, prefix, log.LstdFlags|log.LUTC)
}

// OrDiscard returns logger, or a logger that drops everything when logger is nil.
func OrDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return logger
}
