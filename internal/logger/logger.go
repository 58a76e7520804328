// Package logger wraps logrus so callers don't depend on the logging
// library directly. Output goes to stderr: stdout carries the protocol stream
// and must stay clean.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Re-export the underlying types so call sites stay decoupled from logrus.
type (
	Logger = logrus.Logger
	Entry  = logrus.Entry
	Fields = logrus.Fields
)

var root = logrus.New()

func init() {
	root.SetOutput(os.Stderr)
	root.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false, FullTimestamp: true})
	root.SetLevel(logrus.InfoLevel)
}

// Root returns the process-wide logger.
func Root() *Logger { return root }

// Named returns an entry tagged with a component field.
func Named(component string) *Entry {
	e := logrus.NewEntry(root)
	if component != "" {
		e = e.WithField("component", component)
	}
	return e
}

// SetVerbose switches the root logger to debug level.
func SetVerbose(verbose bool) {
	if verbose {
		root.SetLevel(logrus.DebugLevel)
		return
	}
	root.SetLevel(logrus.InfoLevel)
}

// SetOutput redirects the root logger, mainly for tests.
func SetOutput(w io.Writer) { root.SetOutput(w) }
