package repository

import (
	"os"
	"time"
)

// Option applies a configuration option to the FileLog.
type Option func(*FileLog)

// WithFileMode sets the permissions used when the log file is created.
func WithFileMode(mode os.FileMode) Option {
	return func(l *FileLog) {
		if mode != 0 {
			l.mode = mode
		}
	}
}

// WithLocation sets the time zone used for timestamps. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(l *FileLog) {
		if loc != nil {
			l.location = loc
		}
	}
}
