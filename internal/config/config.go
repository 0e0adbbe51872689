// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file, a .env file and environment variables over New.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Config contains process configuration for the site server, the relay and the site checker.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// PublicDir serves the site from disk instead of the embedded tree when set.
	PublicDir string `koanf:"public_dir"`

	// ContentBaseURL is where page rendering fetches data/*.json and probes images.
	// Empty means the server's own address.
	ContentBaseURL string `koanf:"content_base_url"`

	// RelayURL is where the no-JS contact form posts submissions.
	// Empty means <content_base_url>server/contact.php.
	RelayURL string `koanf:"relay_url"`

	// MountRelay serves the relay endpoints from the site server.
	MountRelay bool `koanf:"mount_relay"`

	// FetchTimeout bounds each JSON content fetch.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// ProbeTimeout bounds each image probe.
	ProbeTimeout time.Duration `koanf:"probe_timeout"`

	// SubmitTimeout bounds the contact form POST to the relay.
	SubmitTimeout time.Duration `koanf:"submit_timeout"`

	// ProbeConcurrency caps in-flight image probes per page.
	ProbeConcurrency int `koanf:"probe_concurrency"`

	// PlaceholderImage replaces images that do not resolve.
	PlaceholderImage string `koanf:"placeholder_image"`

	// ContactLogPath is the append-only submission log.
	ContactLogPath string `koanf:"contact_log_path"`

	// SMTP settings for the relay. Missing user or password means log-only mode.
	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port"`
	SMTPUser     string `koanf:"smtp_user"`
	SMTPPass     string `koanf:"smtp_pass"`
	ContactEmail string `koanf:"contact_email"`

	// Environment is attached to every metric as the "env" label when set.
	Environment string `koanf:"environment"`

	// MetricsEnabled toggles the request and pipeline counters.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshInterval is how often the runtime gauges are sampled.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config with defaults. Context is accepted first to satisfy the
// project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		MountRelay:       true,
		FetchTimeout:     5 * time.Second,
		ProbeTimeout:     3 * time.Second,
		SubmitTimeout:    10 * time.Second,
		ProbeConcurrency: 8,
		PlaceholderImage: "./img/placeholder.jpg",
		ContactLogPath:   "contact_log.txt",
		SMTPHost:         "smtp.gmail.com",
		SMTPPort:         587,
		ContactEmail:     "info@billiardsmontpellier.com",
		MetricsEnabled:   true,
		ShutdownTimeout:  10 * time.Second,
	}
}

// SMTPConfigured reports whether credentials for sending mail are present.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPUser != "" && c.SMTPPass != ""
}

// BaseURL returns ContentBaseURL, deriving it from Addr when unset. The result
// always ends in "/".
func (c *Config) BaseURL() string {
	base := c.ContentBaseURL
	if base == "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			host, port = "", strings.TrimPrefix(c.Addr, ":")
		}
		if host == "" || host == "0.0.0.0" || host == "::" {
			host = "127.0.0.1"
		}
		base = "http://" + net.JoinHostPort(host, port) + "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// ContactRelayURL returns RelayURL, deriving it from BaseURL when unset.
func (c *Config) ContactRelayURL() string {
	if c.RelayURL != "" {
		return c.RelayURL
	}
	return c.BaseURL() + "server/contact.php"
}

// MetricsLabels returns the constant labels for every metric.
func (c *Config) MetricsLabels() map[string]string {
	if c.Environment == "" {
		return nil
	}
	return map[string]string{"env": c.Environment}
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.ContentBaseURL != "" {
		u, err := url.Parse(c.ContentBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: content_base_url must be an absolute URL", ErrInvalidConfig)
		}
	}
	if c.RelayURL != "" {
		u, err := url.Parse(c.RelayURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: relay_url must be an absolute URL", ErrInvalidConfig)
		}
	}
	// Without the mounted relay, a relay URL derived from addr would point
	// at this server's own unserved relay path.
	if !c.MountRelay && c.RelayURL == "" && c.ContentBaseURL == "" {
		return fmt.Errorf("%w: relay_url is required when mount_relay is false", ErrInvalidConfig)
	}
	if c.ProbeConcurrency < 1 {
		return fmt.Errorf("%w: probe_concurrency must be positive", ErrInvalidConfig)
	}
	if c.FetchTimeout <= 0 || c.ProbeTimeout <= 0 || c.SubmitTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("%w: smtp_port out of range", ErrInvalidConfig)
	}
	if c.ContactLogPath == "" {
		return fmt.Errorf("%w: contact_log_path must not be empty", ErrInvalidConfig)
	}
	return nil
}
