package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/montpellier/internal/sitecheck"
)

const defaultCheckTimeout = 5 * time.Minute

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080/", "Base URL of the site")
		workers = flag.Int("workers", sitecheck.DefaultWorkers, "Number of concurrent image probes")
		timeout = flag.Duration("timeout", sitecheck.DefaultTimeout, "Per-request timeout")
		logFile = flag.String("log", "", "Log file for check output (default: sitecheck_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "List every probed image")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sitecheck.ShowHelp()
		return
	}

	if err := sitecheck.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultCheckTimeout)
	defer cancel()

	config := &sitecheck.Config{
		BaseURL: *baseURL,
		Workers: *workers,
		Timeout: *timeout,
		LogFile: *logFile,
		Verbose: *verbose,
	}

	report, err := sitecheck.Run(ctx, config)
	if err != nil {
		os.Stderr.WriteString("Site check failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
	if !report.OK() {
		cancel()
		os.Exit(1)
	}
}
