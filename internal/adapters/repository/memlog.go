package repository

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryLog keeps lines in memory. It backs tests and dry runs.
type MemoryLog struct {
	mu    sync.Mutex
	lines []string
	stats Stats
}

// NewMemoryLog returns an empty MemoryLog.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append implements SubmissionLog.
func (m *MemoryLog) Append(ctx context.Context, at time.Time, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, FormatLine(at, message))
	m.stats.Lines++
	m.stats.LastWrite = at
	return nil
}

// Lines returns everything written so far, one entry per line without the
// trailing newline. Raw keeps the exact bytes FileLog would have written.
func (m *MemoryLog) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.lines))
	for _, l := range m.lines {
		out = append(out, strings.TrimSuffix(l, "\n"))
	}
	return out
}

// Raw returns the log content exactly as FileLog would store it.
func (m *MemoryLog) Raw() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.lines, "")
}

// Stats implements SubmissionLog.
func (m *MemoryLog) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Close implements SubmissionLog.
func (m *MemoryLog) Close() error { return nil }
