// Package sitecheck checks a deployed site the way its pages load it: every
// data/*.json resource is fetched once and every image the cards would
// request is probed.
package sitecheck

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/okian/montpellier/internal/adapters/content"
	"github.com/okian/montpellier/internal/adapters/imageprobe"
	"github.com/okian/montpellier/pkg/logger"
)

// Run executes the complete site check. The error is non-nil only when the
// check could not start; problems found on the site are in the report.
func Run(ctx context.Context, config *Config) (*Report, error) {
	report := &Report{Stats: Stats{StartTime: time.Now()}}

	base := config.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger.Get().Info(ctx, "starting site check",
		logger.String("baseURL", base),
		logger.Int("workers", config.Workers),
		logger.String("timeout", timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	fetcher, err := content.NewFetcher(base, content.WithTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("content fetcher: %w", err)
	}
	resolver, err := imageprobe.NewResolver(base, imageprobe.WithTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("image resolver: %w", err)
	}

	// Step 1: Fetch resources and derive image candidates
	report.Resources, report.Images = collectResources(ctx, fetcher, resolver.Placeholder())
	for _, r := range report.Resources {
		if r.OK() {
			report.Stats.ResourcesFetched++
		} else {
			report.Stats.ResourcesFailed++
		}
	}

	// Step 2: Probe images concurrently
	probeImages(ctx, config, resolver, report.Images, &report.Stats)

	// Final statistics
	report.Stats.EndTime = time.Now()
	report.Stats.Duration = report.Stats.EndTime.Sub(report.Stats.StartTime)

	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	if err := writeReport(out, report, config.Verbose); err != nil {
		logger.Get().Warn(ctx, "failed to write report", logger.Error(err))
	}
	displayFinalStats(ctx, &report.Stats)

	if report.OK() {
		logger.Get().Info(ctx, "site check passed")
	} else {
		logger.Get().Warn(ctx, "site check found problems",
			logger.Int("resourcesFailed", report.Stats.ResourcesFailed),
			logger.Int("imagesMissing", report.Stats.ImagesMissing))
	}
	return report, nil
}

// displayFinalStats logs the final check statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var foundRate, probesPerSecond float64

	if stats.ImagesProbed > 0 {
		foundRate = float64(stats.ImagesFound) / float64(stats.ImagesProbed) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		probesPerSecond = float64(stats.ImagesProbed) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("resourcesFetched", stats.ResourcesFetched),
		logger.Int("resourcesFailed", stats.ResourcesFailed),
		logger.Int("imagesProbed", stats.ImagesProbed),
		logger.Int("imagesFound", stats.ImagesFound),
		logger.Int("imagesMissing", stats.ImagesMissing),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("foundRate", foundRate),
		logger.Float64("probesPerSecond", probesPerSecond))
}
