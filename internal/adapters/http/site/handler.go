package site

import (
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/montpellier/internal/adapters/contactform"
	"github.com/okian/montpellier/internal/domain/model"
	"github.com/okian/montpellier/pkg/logger"
)

const (
	indexPage   = "index.html"
	contactPage = "contacto.html"

	galleryParam = "galeria"
	maxFormBytes = 64 << 10
)

// Handler serves rendered pages, the public tree and the no-JS contact form.
type Handler struct {
	builder  *Builder
	files    http.Handler
	relayURL string
	formOpts []contactform.Option
	logger   logger.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithContactRelay enables POST /contacto, forwarding submissions to
// relayURL.
func WithContactRelay(relayURL string, opts ...contactform.Option) HandlerOption {
	return func(h *Handler) {
		if relayURL != "" {
			h.relayURL = relayURL
			h.formOpts = opts
		}
	}
}

// WithHandlerLogger sets a custom logger.
func WithHandlerLogger(l logger.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler serves pages built by b and static files from fsys.
func NewHandler(b *Builder, fsys fs.FS, opts ...HandlerOption) *Handler {
	h := &Handler{
		builder: b,
		files:   http.FileServer(http.FS(fsys)),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("site")
	}
	return h
}

// Register attaches the site routes to r. It must be registered after any
// more specific routes since it claims every remaining path.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.page(indexPage))
	r.Get("/contacto", h.page(contactPage))
	if h.relayURL != "" {
		r.Post("/contacto", h.HandleContactForm)
	}
	r.Get("/*", h.HandleStatic)
	r.Head("/*", h.files.ServeHTTP)
}

func (h *Handler) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, RenderRequest{Template: name}, http.StatusOK)
	}
}

// HandleStatic renders .html templates and serves every other file as is.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if h.builder.HasPage(name) {
		h.serve(w, r, RenderRequest{Template: name}, http.StatusOK)
		return
	}
	h.files.ServeHTTP(w, r)
}

// HandleContactForm submits the posted form to the relay and renders the
// contact page with the outcome.
func (h *Handler) HandleContactForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.logger.Warn(r.Context(), "unreadable contact form", logger.Error(err))
	}
	sub := model.ContactSubmission{
		Nombre:      r.PostFormValue("nombre"),
		Email:       r.PostFormValue("email"),
		Telefono:    r.PostFormValue("telefono"),
		Comentarios: r.PostFormValue("comentarios"),
	}

	// One handler per page load, like one form per browser tab.
	form, err := contactform.New(h.relayURL, h.formOpts...)
	if err != nil {
		h.logger.Error(r.Context(), "contact form misconfigured", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	form.OnTransition(func(t contactform.Transition) {
		h.logger.Debug(r.Context(), "contact form transition",
			logger.String("from", t.From.String()),
			logger.String("to", t.To.String()),
		)
	})

	out, err := form.Submit(r.Context(), sub)
	if err != nil {
		out = contactform.Outcome{Message: contactform.MsgServerError, Submission: sub}
	}

	status := http.StatusOK
	if !out.Success {
		status = http.StatusUnprocessableEntity
	}
	h.serve(w, r, RenderRequest{
		Template: contactPage,
		Form:     &FormResult{Success: out.Success, Message: out.Message, Values: out.Submission},
	}, status)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, req RenderRequest, status int) {
	req.URL = pageURL(r)
	req.GalleryFilter = r.URL.Query().Get(galleryParam)

	body, err := h.builder.Render(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error(r.Context(), "render page", logger.String("page", req.Template), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// pageURL rebuilds the absolute URL the visitor asked for.
func pageURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		u.Scheme = proto
	}
	u.Host = r.Host
	u.Fragment = ""
	return &u
}
