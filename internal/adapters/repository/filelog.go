package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileLog appends lines to a plain text file. Appends are serialized so lines
// from concurrent requests never interleave.
type FileLog struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	mode     os.FileMode
	location *time.Location
	stats    Stats
}

// OpenFileLog opens path for appending, creating it and its directory if needed.
func OpenFileLog(path string, opts ...Option) (*FileLog, error) {
	l := &FileLog{
		path:     path,
		mode:     0o644,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(l)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAppendFailed, err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, l.mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}
	l.file = f
	return l, nil
}

// Path returns the file being written.
func (l *FileLog) Path() string {
	return l.path
}

// Append implements SubmissionLog.
func (l *FileLog) Append(ctx context.Context, at time.Time, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line := FormatLine(at.In(l.location), message)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ErrClosed
	}
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}
	l.stats.Lines++
	l.stats.LastWrite = at
	return nil
}

// Stats implements SubmissionLog.
func (l *FileLog) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Close implements SubmissionLog. It is safe to call more than once.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// FormatLine renders one log line, including the trailing newline.
func FormatLine(at time.Time, message string) string {
	return at.Format(TimestampLayout) + " - " + flatten(message) + "\n"
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ") //nolint:gochecknoglobals // immutable replacer

func flatten(s string) string {
	return lineBreaks.Replace(s)
}
