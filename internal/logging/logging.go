// Package logging holds the debug switch shared by the dotprint tools.
package logging

import (
	"io"
	"log"
	"os"
)

// DebugEnabled controls whether Debug and Debugf produce output.
// Set via -debug flag or DEBUG=1 environment variable.
var DebugEnabled bool

// FromEnv turns debugging on when DEBUG=1.
func FromEnv() {
	if os.Getenv("DEBUG") == "1" {
		DebugEnabled = true
	}
}

// Debug logs a message on the standard logger only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}

// Debugf is Debug for an injected logger.
func Debugf(l *log.Logger, format string, args ...any) {
	if DebugEnabled && l != nil {
		l.Printf("DEBUG: "+format, args...)
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
