// Package contactform submits the site's contact form to the mail relay and
// turns the relay's answer into the message shown to the visitor.
package contactform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/okian/montpellier/internal/domain/contact"
	"github.com/okian/montpellier/internal/domain/model"
	"github.com/okian/montpellier/pkg/logger"
	"github.com/okian/montpellier/pkg/metrics"
)

// Visitor-facing messages.
const (
	MsgSuccess     = "¡Mensaje enviado con éxito! Te contactaremos pronto."
	MsgRejected    = "Hubo un error al enviar el mensaje. Por favor intenta nuevamente."
	MsgUnexpected  = "Respuesta inesperada del servidor. Por favor intenta nuevamente más tarde."
	MsgServerError = "Error del servidor. Por favor intenta nuevamente más tarde."
	MsgConnection  = "Error de conexión. Por favor intenta nuevamente más tarde."
)

const (
	defaultTimeout = 10 * time.Second
	maxReplyBytes  = 64 << 10
)

// Outcome is the result shown to the visitor.
type Outcome struct {
	Success    bool
	Message    string
	Reason     string
	Submission model.ContactSubmission
}

// relayReply is the relay's JSON answer.
type relayReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handler drives one contact form. It accepts a single submission at a time.
type Handler struct {
	mu        sync.Mutex
	state     State
	observers []Observer

	relayURL string
	client   *http.Client
	timeout  time.Duration
	logger   logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithHTTPClient sets the client used to reach the relay.
func WithHTTPClient(c *http.Client) Option {
	return func(h *Handler) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout bounds one relay round trip.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New returns an idle Handler posting to relayURL.
func New(relayURL string, opts ...Option) (*Handler, error) {
	u, err := url.Parse(relayURL)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, relayURL)
	}
	h := &Handler{
		state:    Idle,
		relayURL: u.String(),
		client:   http.DefaultClient,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("contactform")
	}
	return h, nil
}

// OnTransition registers an observer for state changes.
func (h *Handler) OnTransition(o Observer) {
	if o == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, o)
}

// State returns the current state.
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Submit sanitizes and validates raw, then posts it to the relay once.
// It returns ErrBusy when another submission is in flight; every other
// failure is reported through the Outcome.
func (h *Handler) Submit(ctx context.Context, raw model.ContactSubmission) (Outcome, error) {
	if !h.begin() {
		return Outcome{}, ErrBusy
	}

	sub := contact.Sanitize(raw)
	if err := contact.Validate(sub); err != nil {
		out := Outcome{Message: validationMessage(err), Reason: reasonFor(err), Submission: sub}
		return h.finish(out), nil
	}

	h.transition(Submitting, "")
	out := h.post(ctx, sub)
	out.Submission = sub
	return h.finish(out), nil
}

func (h *Handler) finish(out Outcome) Outcome {
	state := Error
	if out.Success {
		state = Success
	}
	metrics.RecordFormSubmission(state.String(), out.Reason)
	h.transition(state, out.Message)
	h.transition(Idle, "")
	return out
}

func (h *Handler) post(ctx context.Context, sub model.ContactSubmission) Outcome {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("nombre", sub.Nombre)
	form.Set("email", sub.Email)
	form.Set("telefono", sub.Telefono)
	form.Set("comentarios", sub.Comentarios)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.relayURL, strings.NewReader(form.Encode()))
	if err != nil {
		h.logger.Error(ctx, "build relay request", logger.Error(err))
		return Outcome{Message: MsgConnection, Reason: "request"}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error(ctx, "contact relay unreachable", logger.Error(err))
		return Outcome{Message: MsgConnection, Reason: "transport"}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		h.logger.Error(ctx, "read relay response", logger.Error(err))
		return Outcome{Message: MsgConnection, Reason: "transport"}
	}
	return h.interpret(ctx, resp.StatusCode, body)
}

func (h *Handler) interpret(ctx context.Context, status int, body []byte) Outcome {
	var reply relayReply
	decodeErr := json.Unmarshal(body, &reply)

	if status < 200 || status > 299 {
		h.logger.Warn(ctx, "contact relay rejected submission",
			logger.Int("status", status),
			logger.String("message", reply.Message),
		)
		if decodeErr == nil && reply.Message != "" {
			return Outcome{Message: reply.Message, Reason: "status"}
		}
		return Outcome{Message: MsgServerError, Reason: "status"}
	}

	if decodeErr != nil {
		h.logger.Error(ctx, "contact relay answered with non-JSON", logger.Error(decodeErr))
		return Outcome{Message: MsgUnexpected, Reason: "decode"}
	}
	if reply.Success {
		return Outcome{Success: true, Message: MsgSuccess}
	}
	if reply.Message != "" {
		return Outcome{Message: reply.Message, Reason: "rejected"}
	}
	return Outcome{Message: MsgRejected, Reason: "rejected"}
}

// begin moves Idle to Validating atomically.
func (h *Handler) begin() bool {
	h.mu.Lock()
	if h.state != Idle {
		h.mu.Unlock()
		return false
	}
	h.notify(h.swap(Validating, ""))
	return true
}

func (h *Handler) transition(to State, message string) {
	h.mu.Lock()
	h.notify(h.swap(to, message))
}

// swap must be called with h.mu held.
func (h *Handler) swap(to State, message string) (Transition, []Observer) {
	t := Transition{From: h.state, To: to, Message: message}
	h.state = to
	return t, append([]Observer(nil), h.observers...)
}

// notify releases h.mu before calling observers.
func (h *Handler) notify(t Transition, observers []Observer) {
	h.mu.Unlock()
	for _, o := range observers {
		o(t)
	}
}

func validationMessage(err error) string {
	if errors.Is(err, contact.ErrInvalidEmail) {
		return contact.MsgInvalidEmail
	}
	return contact.MsgMissingFields
}

func reasonFor(err error) string {
	if errors.Is(err, contact.ErrInvalidEmail) {
		return "invalid_email"
	}
	return "missing_fields"
}
