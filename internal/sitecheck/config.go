package sitecheck

import (
	"io"
	"time"
)

// Config holds configuration for a site check.
type Config struct {
	BaseURL string        // Base URL of the deployed site
	Workers int           // Number of concurrent image probes
	Timeout time.Duration // Per-request timeout
	LogFile string        // Log file for check output
	Verbose bool          // Print every probed image, not only missing ones
	Out     io.Writer     // Report destination, stdout when nil
}

// ResourceResult is the outcome of fetching one data/*.json resource.
type ResourceResult struct {
	Resource string
	Records  int
	Err      error
	Duration time.Duration
}

// OK reports whether the resource was fetched and decoded.
func (r ResourceResult) OK() bool { return r.Err == nil }

// ImageCheck is one derived image candidate and whether it resolved.
type ImageCheck struct {
	Source    string // resource the candidate was derived from
	Candidate string
	Found     bool
}

// Stats holds check statistics.
type Stats struct {
	ResourcesFetched int
	ResourcesFailed  int
	ImagesProbed     int
	ImagesFound      int
	ImagesMissing    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// Report is the full result of a site check.
type Report struct {
	Resources []ResourceResult
	Images    []ImageCheck
	Stats     Stats
}

// OK reports whether every resource loaded and every image resolved.
func (r *Report) OK() bool {
	return r.Stats.ResourcesFailed == 0 && r.Stats.ImagesMissing == 0
}

// Missing returns the image checks that did not resolve, in derivation order.
func (r *Report) Missing() []ImageCheck {
	var out []ImageCheck
	for _, c := range r.Images {
		if !c.Found {
			out = append(out, c)
		}
	}
	return out
}
