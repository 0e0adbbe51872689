package sitecheck

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// writeReport prints per-resource results followed by the missing images.
func writeReport(w io.Writer, report *Report, verbose bool) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "📦 Resources:")
	for _, r := range report.Resources {
		if r.OK() {
			fmt.Fprintf(bw, "  ✅ %-26s %4d records  %s\n", r.Resource, r.Records, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(bw, "  ❌ %-26s %v\n", r.Resource, r.Err)
		}
	}

	missing := report.Missing()
	if len(missing) == 0 {
		fmt.Fprintf(bw, "🖼  All %d images resolved\n", len(report.Images))
	} else {
		fmt.Fprintf(bw, "🖼  Missing images (%d of %d):\n", len(missing), len(report.Images))
		for _, c := range missing {
			fmt.Fprintf(bw, "  ⚠️  %s (%s)\n", c.Candidate, c.Source)
		}
	}

	if verbose {
		fmt.Fprintln(bw, "🔍 Probed images:")
		for _, c := range report.Images {
			mark := "found"
			if !c.Found {
				mark = "missing"
			}
			fmt.Fprintf(bw, "  %-7s %s\n", mark, c.Candidate)
		}
	}

	return bw.Flush()
}
