package sitecheck

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/montpellier/pkg/logger"
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sitecheck_" + timestamp + ".log"
	}

	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.InitWith(io.MultiWriter(os.Stdout, file), logger.FormatText); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the site checker.
func ShowHelp() {
	os.Stdout.WriteString(`Billiards Montpellier Site Checker
==================================

Fetches the data files of a deployed site and probes every image the pages
would request, reporting broken resources and missing images.

Usage:
  go run cmd/sitecheck/main.go [options]

Options:
  -url string
        Base URL of the site (default "http://localhost:9080/")
  -workers int
        Number of concurrent image probes (default 8)
  -timeout duration
        Per-request timeout (default 10s)
  -log string
        Log file for check output (default: sitecheck_TIMESTAMP.log)
  -verbose
        List every probed image, not only the missing ones
  -help
        Show this help message

Examples:
  # Check a local server
  go run cmd/sitecheck/main.go

  # Check the production site with more workers
  go run cmd/sitecheck/main.go -url https://billiardsmontpellier.com/ -workers 16

Exit status is 1 when a resource fails to load or an image is missing.
`)
}
