package sitecheck

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	DefaultWorkers          = 8
	DefaultTimeout          = 10 * time.Second
)

// Report constants.
const (
	PercentageMultiplier = 100
)

// File permission constants.
const (
	directoryPermission = 0750
	logFilePermission   = 0600
)
