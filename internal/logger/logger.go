// Package logger holds the process-wide logrus logger. The TUI owns the
// terminal, so output goes to a file unless configured otherwise.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Log discards everything until Setup is called.
var Log = newLogger(io.Discard, logrus.InfoLevel)

func newLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// Setup points Log at path ("-" for stderr) with the given level name.
// The returned func closes the log file.
func Setup(level, path string) (func() error, error) {
	lvl := logrus.InfoLevel
	if level != "" {
		var err error
		lvl, err = logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
	}

	if path == "" || path == "-" {
		Log.SetOutput(os.Stderr)
		Log.SetLevel(lvl)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	Log.SetOutput(f)
	Log.SetLevel(lvl)
	return f.Close, nil
}
