// Package repository persists the contact submission log.
package repository

import (
	"context"
	"time"
)

// TimestampLayout is the timestamp prefix of every log line.
const TimestampLayout = "2006-01-02 15:04:05"

// Stats summarizes what a log has written since it was opened.
type Stats struct {
	Lines     int64
	LastWrite time.Time
}

// SubmissionLog is an append-only, line-oriented record of relay activity.
type SubmissionLog interface {
	// Append writes "<timestamp> - <message>" as exactly one line. Line breaks
	// inside message are flattened to spaces.
	Append(ctx context.Context, at time.Time, message string) error

	// Stats returns counters for the lines written through this log.
	Stats() Stats

	// Close releases the underlying file.
	Close() error
}
