// Package site renders the venue's pages server-side: it fills the page
// templates with content records, resolves their images and serves the
// result together with the public tree.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/okian/montpellier/internal/domain/model"
	"github.com/okian/montpellier/pkg/logger"
	"github.com/okian/montpellier/pkg/metrics"
)

const defaultProbeConcurrency = 8

// ContentSource provides the site's JSON records.
type ContentSource interface {
	Players(ctx context.Context) ([]model.PlayerRecord, error)
	Menu(ctx context.Context) (model.MenuCatalog, error)
	Gallery(ctx context.Context) (model.Gallery, error)
	Events(ctx context.Context) (model.EventsBoard, error)
	ContactMetadata(ctx context.Context) (model.ContactMetadata, error)
}

// ImageChecker decides whether an image candidate exists.
type ImageChecker interface {
	Exists(ctx context.Context, candidate string) bool
	Placeholder() string
}

// RenderRequest describes one page load.
type RenderRequest struct {
	// Template is the page file in the public tree, e.g. "index.html".
	Template string
	// URL is the absolute URL the page was requested at.
	URL *url.URL
	// GalleryFilter is "all", a category key or empty for no filtering.
	GalleryFilter string
	// Form carries the outcome of a contact form submission, if any.
	Form *FormResult
}

// FormResult is shown in #form-message.
type FormResult struct {
	Success bool
	Message string
	Values  model.ContactSubmission
}

// imageJob is one probe and what to do with its answer.
type imageJob struct {
	candidate string
	apply     func(exists bool)
}

// section fills the containers it captured at construction. Load runs
// concurrently with the other sections; Finish runs after every probe.
type section interface {
	Name() string
	Load(ctx context.Context) ([]imageJob, error)
	Finish()
}

// Builder assembles pages.
type Builder struct {
	fsys             fs.FS
	content          ContentSource
	images           ImageChecker
	probeConcurrency int
	logger           logger.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithProbeConcurrency bounds the number of image probes in flight per page.
func WithProbeConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.probeConcurrency = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder returns a Builder reading templates from fsys.
func NewBuilder(fsys fs.FS, content ContentSource, images ImageChecker, opts ...Option) *Builder {
	b := &Builder{
		fsys:             fsys,
		content:          content,
		images:           images,
		probeConcurrency: defaultProbeConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.Get().Named("site")
	}
	return b
}

// HasPage reports whether name is a page template.
func (b *Builder) HasPage(name string) bool {
	if !strings.HasSuffix(name, ".html") {
		return false
	}
	st, err := fs.Stat(b.fsys, name)
	return err == nil && !st.IsDir()
}

// Render builds the page described by req and returns the HTML document.
func (b *Builder) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	start := time.Now()
	page := strings.TrimSuffix(req.Template, ".html")

	out, err := b.render(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		metrics.RecordErrorByComponent("site", "render")
	}
	metrics.RecordPageRender(page, outcome, float64(time.Since(start).Milliseconds()))
	return out, err
}

func (b *Builder) render(ctx context.Context, req RenderRequest) ([]byte, error) {
	doc, err := b.parse(req.Template)
	if err != nil {
		return nil, err
	}

	pageURL := req.URL
	if pageURL == nil {
		pageURL = &url.URL{Path: "/"}
	}

	// Contact metadata is fetched once per page and shared by the sections
	// that need it.
	contactMeta := sync.OnceValues(func() (model.ContactMetadata, error) {
		return b.content.ContactMetadata(ctx)
	})

	sections, gallery := b.sections(doc, pageURL, contactMeta)
	b.assemble(ctx, sections)

	if gallery != nil && req.GalleryFilter != "" {
		gallery.Filter(req.GalleryFilter)
	}
	if req.Form != nil {
		applyForm(doc, *req.Form)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Nodes[0]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) parse(name string) (*goquery.Document, error) {
	raw, err := fs.ReadFile(b.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPageNotFound, name)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
	}
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// sections looks every container up once and builds the components whose
// containers exist in the template.
func (b *Builder) sections(doc *goquery.Document, pageURL *url.URL, contactMeta func() (model.ContactMetadata, error)) ([]section, *GallerySection) {
	var out []section
	placeholder := b.images.Placeholder()

	if n := byID(doc, "players-container"); n != nil {
		out = append(out, &PlayersSection{container: n, content: b.content, placeholder: placeholder})
	}
	if n := byID(doc, "menu-container"); n != nil {
		out = append(out, &MenuSection{container: n, content: b.content, placeholder: placeholder})
	}
	if ev := newEventsSection(doc, b.content, placeholder); ev != nil {
		out = append(out, ev)
	}

	var gallery *GallerySection
	if n := byID(doc, "gallery-container"); n != nil {
		gallery = &GallerySection{
			container: n,
			controls:  doc.Find(".filter-btn"),
			content:   b.content,
			logger:    b.logger,
		}
		out = append(out, gallery)
	}

	if links := newContactLinks(doc, contactMeta); links != nil {
		out = append(out, links)
	}
	if seo := newSEO(doc, pageURL, contactMeta); seo != nil {
		out = append(out, seo)
	}
	return out, gallery
}

// assemble loads every section concurrently, probes all collected images
// with bounded concurrency and then lets each section finish.
func (b *Builder) assemble(ctx context.Context, sections []section) {
	jobs := make([][]imageJob, len(sections))

	var loaders errgroup.Group
	for i, s := range sections {
		loaders.Go(func() error {
			j, err := s.Load(ctx)
			if err != nil {
				metrics.RecordErrorByComponent("site", s.Name())
				b.logger.Warn(ctx, "section left as in template",
					logger.String("section", s.Name()),
					logger.Error(err),
				)
			}
			jobs[i] = j
			return nil
		})
	}
	_ = loaders.Wait()

	var probes errgroup.Group
	probes.SetLimit(b.probeConcurrency)
	for _, js := range jobs {
		for _, j := range js {
			probes.Go(func() error {
				j.apply(b.images.Exists(ctx, j.candidate))
				return nil
			})
		}
	}
	_ = probes.Wait()

	for _, s := range sections {
		s.Finish()
	}
}

func byID(doc *goquery.Document, id string) *html.Node {
	sel := doc.Find("#" + id)
	if sel.Length() == 0 {
		return nil
	}
	return sel.Nodes[0]
}

// applyForm writes the submission outcome into the contact form. Inputs are
// cleared on success and keep the submitted values otherwise.
func applyForm(doc *goquery.Document, res FormResult) {
	class := "form-message error"
	if res.Success {
		class = "form-message success"
	}
	doc.Find("#form-message").SetAttr("class", class).SetText(res.Message)

	values := map[string]string{
		"nombre":      res.Values.Nombre,
		"email":       res.Values.Email,
		"telefono":    res.Values.Telefono,
		"comentarios": res.Values.Comentarios,
	}
	doc.Find("#contact-form [name]").Each(func(_ int, field *goquery.Selection) {
		v, ok := values[field.AttrOr("name", "")]
		if !ok {
			return
		}
		if res.Success {
			v = ""
		}
		if goquery.NodeName(field) == "textarea" {
			field.SetText(v)
			return
		}
		field.SetAttr("value", v)
	})
}
