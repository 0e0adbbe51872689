// Package imageprobe checks whether image candidates exist on the site.
package imageprobe

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/montpellier/pkg/metrics"
)

const (
	defaultTimeout     = 3 * time.Second
	defaultPlaceholder = "./img/placeholder.jpg"
	drainLimit         = 64 << 10
)

// Resolver probes image candidates relative to a base URL. Every call issues
// its own request; results are never cached.
type Resolver struct {
	base        *url.URL
	client      *http.Client
	placeholder string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithTimeout sets the per-probe timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.client = &http.Client{Timeout: d}
		}
	}
}

// WithPlaceholder sets the path substituted for missing images.
func WithPlaceholder(path string) Option {
	return func(r *Resolver) {
		if path != "" {
			r.placeholder = path
		}
	}
}

// NewResolver builds a Resolver for the site rooted at baseURL.
func NewResolver(baseURL string, opts ...Option) (*Resolver, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("imageprobe: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("imageprobe: base url %q must be absolute", baseURL)
	}
	r := &Resolver{
		base:        base,
		client:      &http.Client{Timeout: defaultTimeout},
		placeholder: defaultPlaceholder,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Placeholder returns the substitute path for missing images.
func (r *Resolver) Placeholder() string {
	return r.placeholder
}

// Exists reports whether candidate answers 2xx with an image content type.
// HEAD is tried first and GET is used when the origin rejects HEAD with 405.
// Any failure counts as missing.
func (r *Resolver) Exists(ctx context.Context, candidate string) bool {
	ok := r.exists(ctx, candidate)
	metrics.RecordImageProbe(ok)
	return ok
}

func (r *Resolver) exists(ctx context.Context, candidate string) bool {
	ref, err := url.Parse(candidate)
	if err != nil || candidate == "" {
		return false
	}
	target := r.base.ResolveReference(ref).String()

	resp, err := r.do(ctx, http.MethodHead, target)
	if err != nil {
		return false
	}
	if resp.StatusCode == http.StatusMethodNotAllowed {
		resp, err = r.do(ctx, http.MethodGet, target)
		if err != nil {
			return false
		}
	}
	return resp.StatusCode >= 200 && resp.StatusCode <= 299 && isImage(resp.Header.Get("Content-Type"))
}

func (r *Resolver) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	_ = resp.Body.Close()
	return resp, nil
}

func isImage(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "image/")
}

// Probe runs Exists in the background. The channel yields exactly one value
// and is then closed.
func (r *Resolver) Probe(ctx context.Context, candidate string) <-chan bool {
	ch := make(chan bool, 1)
	go func() {
		defer close(ch)
		ch <- r.Exists(ctx, candidate)
	}()
	return ch
}

// Resolve returns candidate when it exists and the placeholder otherwise.
func (r *Resolver) Resolve(ctx context.Context, candidate string) string {
	if r.Exists(ctx, candidate) {
		return candidate
	}
	return r.placeholder
}
