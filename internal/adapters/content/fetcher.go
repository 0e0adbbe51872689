// Package content fetches the site's published JSON resources.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/montpellier/internal/domain/model"
	"github.com/okian/montpellier/pkg/metrics"
)

// Published resources, relative to the site root.
const (
	ResourcePlayers = "data/jugadores.json"
	ResourceMenu    = "data/menu.json"
	ResourceGallery = "data/galeria.json"
	ResourceEvents  = "data/eventos.json"
	ResourceContact = "data/datos_contacto.json"
)

// Resources lists every published resource.
func Resources() []string {
	return []string{ResourcePlayers, ResourceMenu, ResourceGallery, ResourceEvents, ResourceContact}
}

const (
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 4 << 20
)

// Fetcher retrieves JSON resources relative to a base URL. Every request
// carries a fresh v=<unix millis> parameter so caches are bypassed.
type Fetcher struct {
	base   *url.URL
	client *http.Client
	now    func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// WithClock overrides the time source used for the cache-busting parameter.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFetcher builds a Fetcher for the site rooted at baseURL.
func NewFetcher(baseURL string, opts ...Option) (*Fetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("content: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("content: base url %q must be absolute", baseURL)
	}
	f := &Fetcher{
		base:   base,
		client: &http.Client{Timeout: defaultTimeout},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// URL returns the cache-busted address of resource.
func (f *Fetcher) URL(resource string) string {
	u := f.base.ResolveReference(&url.URL{Path: resource})
	q := u.Query()
	q.Set("v", strconv.FormatInt(f.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch issues a single GET for resource and decodes the JSON body into out.
// It fails with ErrTransport, ErrStatus or ErrDecode; there is no retry.
func (f *Fetcher) Fetch(ctx context.Context, resource string, out any) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.RecordContentFetch(resource, outcome, float64(time.Since(start).Milliseconds()))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(resource), nil)
	if err != nil {
		outcome = "transport"
		return fmt.Errorf("%w: %s: %w", ErrTransport, resource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		outcome = "transport"
		return fmt.Errorf("%w: %s: %w", ErrTransport, resource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "status"
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: %s returned %d", ErrStatus, resource, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		outcome = "decode"
		return fmt.Errorf("%w: %s: %w", ErrDecode, resource, err)
	}
	return nil
}

// Players fetches data/jugadores.json.
func (f *Fetcher) Players(ctx context.Context) ([]model.PlayerRecord, error) {
	var out []model.PlayerRecord
	if err := f.Fetch(ctx, ResourcePlayers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Menu fetches data/menu.json.
func (f *Fetcher) Menu(ctx context.Context) (model.MenuCatalog, error) {
	var out model.MenuCatalog
	if err := f.Fetch(ctx, ResourceMenu, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Gallery fetches data/galeria.json.
func (f *Fetcher) Gallery(ctx context.Context) (model.Gallery, error) {
	var out model.Gallery
	if err := f.Fetch(ctx, ResourceGallery, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Events fetches data/eventos.json.
func (f *Fetcher) Events(ctx context.Context) (model.EventsBoard, error) {
	var out model.EventsBoard
	if err := f.Fetch(ctx, ResourceEvents, &out); err != nil {
		return model.EventsBoard{}, err
	}
	return out, nil
}

// ContactMetadata fetches data/datos_contacto.json.
func (f *Fetcher) ContactMetadata(ctx context.Context) (model.ContactMetadata, error) {
	var out model.ContactMetadata
	if err := f.Fetch(ctx, ResourceContact, &out); err != nil {
		return model.ContactMetadata{}, err
	}
	return out, nil
}
