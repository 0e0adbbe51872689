package metrics

import (
	"context"
	"runtime"
	"time"
)

const nanosecondsPerMillisecond = 1e6

// RunSystemUpdater refreshes the system gauges every interval until ctx is
// done. A non-positive interval uses RefreshInterval().
func RunSystemUpdater(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = RefreshInterval()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	UpdateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			UpdateSystemMetrics()
		}
	}
}

// UpdateSystemMetrics samples memory, goroutines and the average GC pause.
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	UpdateSystemMemoryUsage(m.Alloc)

	UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		RecordSystemGCPauseTime(avgPauseMs)
	}
}
