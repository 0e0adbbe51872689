package sitecheck

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/montpellier/pkg/logger"
)

// Prober reports whether an image candidate resolves on the site.
type Prober interface {
	Exists(ctx context.Context, candidate string) bool
}

const progressInterval = time.Second

// probeImages checks every candidate using a pool of workers and fills in
// Found. Candidates keep their order.
func probeImages(ctx context.Context, config *Config, prober Prober, images []ImageCheck, stats *Stats) {
	workers := config.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	logger.Get().Info(ctx, "probing images", logger.Int("images", len(images)), logger.Int("workers", workers))

	var (
		found      int64
		missing    int64
		probed     int64
		lastReport atomic.Int64
	)

	jobs := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				ok := ctx.Err() == nil && prober.Exists(ctx, images[idx].Candidate)
				images[idx].Found = ok

				atomic.AddInt64(&probed, 1)
				if ok {
					atomic.AddInt64(&found, 1)
				} else {
					atomic.AddInt64(&missing, 1)
				}

				if config.Verbose {
					logger.Get().Debug(ctx, "image probed",
						logger.String("candidate", images[idx].Candidate),
						logger.Bool("found", ok))
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					logger.Get().Info(ctx, "probe progress",
						logger.String("done", fmt.Sprintf("%d/%d", atomic.LoadInt64(&probed), len(images))),
						logger.Int("missing", int(atomic.LoadInt64(&missing))))
				}
			}
		}()
	}

	for i := range images {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	stats.ImagesProbed = int(atomic.LoadInt64(&probed))
	stats.ImagesFound = int(atomic.LoadInt64(&found))
	stats.ImagesMissing = int(atomic.LoadInt64(&missing))
}
