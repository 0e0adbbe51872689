// Package service implements the contact relay: it validates submissions,
// records them in the submission log and forwards them by email when SMTP is
// configured.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/montpellier/internal/adapters/mail"
	"github.com/okian/montpellier/internal/adapters/repository"
	"github.com/okian/montpellier/internal/domain/contact"
	"github.com/okian/montpellier/internal/domain/model"
	"github.com/okian/montpellier/pkg/logger"
	"github.com/okian/montpellier/pkg/metrics"
)

// User-facing relay messages.
const (
	MsgLogged     = "Mensaje recibido y registrado. (Nota: El envío de email requiere configuración SMTP)"
	MsgSent       = "¡Mensaje enviado con éxito! Te contactaremos pronto."
	MsgSendFailed = "Hubo un error al enviar el mensaje. Por favor intenta nuevamente o contáctanos directamente."
	MsgTechnical  = "Error técnico al procesar el envío"
)

const defaultRecipient = "info@billiardsmontpellier.com"

// Outcome tells how an accepted submission was handled.
type Outcome string

// Relay outcomes.
const (
	OutcomeLogged Outcome = "logged"
	OutcomeSent   Outcome = "sent"
)

// Result describes an accepted submission.
type Result struct {
	ID         string
	Outcome    Outcome
	Submission model.ContactSubmission
}

// Message returns the user-facing text for the outcome.
func (r Result) Message() string {
	if r.Outcome == OutcomeSent {
		return MsgSent
	}
	return MsgLogged
}

// Service relays contact submissions.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	subLog  repository.SubmissionLog
	sender  mail.Sender
	logPath string

	// Addressing
	from string
	to   string

	now func() time.Time

	// State
	started bool
	ownsLog bool

	received atomic.Int64
	invalid  atomic.Int64
	logged   atomic.Int64
	sent     atomic.Int64
	failed   atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogPath sets the submission log file opened by Start.
func WithLogPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.logPath = path
		}
	}
}

// WithSubmissionLog uses an already opened log instead of a file.
func WithSubmissionLog(l repository.SubmissionLog) Option {
	return func(s *Service) {
		if l != nil {
			s.subLog = l
		}
	}
}

// WithSMTP enables email delivery when both user and pass are set. The user
// is also the sender address.
func WithSMTP(host string, port int, user, pass string) Option {
	return func(s *Service) {
		if user == "" || pass == "" {
			return
		}
		s.sender = mail.NewSMTPSender(host, port, user, pass)
		s.from = user
	}
}

// WithSender sets a custom delivery backend and sender address.
func WithSender(sender mail.Sender, from string) Option {
	return func(s *Service) {
		if sender != nil {
			s.sender = sender
			s.from = from
		}
	}
}

// WithRecipient sets the address notifications are sent to.
func WithRecipient(to string) Option {
	return func(s *Service) {
		if to != "" {
			s.to = to
		}
	}
}

// WithClock overrides the time source for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		logPath: "contact_log.txt",
		to:      defaultRecipient,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the submission log.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("relay")
	}
	if s.subLog == nil {
		l, err := repository.OpenFileLog(s.logPath)
		if err != nil {
			return fmt.Errorf("open submission log: %w", err)
		}
		s.subLog = l
		s.ownsLog = true
	}

	s.started = true
	s.logger.Info(ctx, "contact relay started",
		logger.String("log_path", s.logPath),
		logger.Bool("smtp", s.sender != nil),
		logger.String("recipient", s.to),
	)
	if s.sender == nil {
		s.logger.Warn(ctx, "SMTP no configurado. Configure SMTP_USER y SMTP_PASS en variables de entorno.")
	}
	return nil
}

// Stop closes the submission log if Start opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.ownsLog {
		if err := s.subLog.Close(); err != nil {
			s.logger.Error(context.Background(), "close submission log", logger.Error(err))
		}
		s.subLog = nil
		s.ownsLog = false
	}
	s.started = false
	s.logger.Info(context.Background(), "contact relay stopped")
}

// Relay sanitizes and validates a submission, records it and, when SMTP is
// configured, sends one notification. Validation failures return
// contact.ErrMissingFields or contact.ErrInvalidEmail; delivery failures
// return ErrSendFailed. There is no retry.
func (s *Service) Relay(ctx context.Context, raw model.ContactSubmission) (Result, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return Result{}, ErrNotStarted
	}

	s.received.Add(1)
	sub := contact.Sanitize(raw)
	if err := s.validate(sub); err != nil {
		s.invalid.Add(1)
		metrics.RecordRelaySubmission("invalid")
		return Result{}, err
	}

	res := Result{ID: uuid.NewString(), Submission: sub}
	log := s.logger.With(logger.String("submission_id", res.ID))

	s.append(ctx, log, "Mensaje recibido de: "+sub.Nombre+" ("+sub.Email+")")

	if s.sender == nil {
		s.logged.Add(1)
		metrics.RecordRelaySubmission(string(OutcomeLogged))
		log.Warn(ctx, "smtp not configured, submission only logged")
		res.Outcome = OutcomeLogged
		return res, nil
	}

	msg, err := mail.ComposeContact(sub, s.from, s.to, s.now())
	if err != nil {
		return Result{}, s.fail(ctx, log, err)
	}

	start := time.Now()
	err = s.sender.Send(ctx, msg)
	metrics.RecordSMTPSendLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return Result{}, s.fail(ctx, log, err)
	}

	s.append(ctx, log, "Email enviado exitosamente a "+s.to)
	s.sent.Add(1)
	metrics.RecordRelaySubmission(string(OutcomeSent))
	log.Info(ctx, "contact email sent", logger.String("to", s.to))
	res.Outcome = OutcomeSent
	return res, nil
}

func (s *Service) validate(sub model.ContactSubmission) error {
	if sub.Nombre == "" || sub.Email == "" || sub.Telefono == "" {
		return contact.ErrMissingFields
	}
	if !contact.ValidRelayEmail(sub.Email) {
		return contact.ErrInvalidEmail
	}
	return nil
}

func (s *Service) fail(ctx context.Context, log logger.Logger, err error) error {
	s.append(ctx, log, "Error al enviar email: "+err.Error())
	s.failed.Add(1)
	metrics.RecordRelaySubmission("failed")
	metrics.RecordErrorByComponent("relay", "send_failed")
	log.Error(ctx, "contact email failed", logger.Error(err))
	return fmt.Errorf("%w: %w", ErrSendFailed, err)
}

// append writes one line to the submission log. A failing log never blocks
// the relay; the failure goes to the structured logger.
func (s *Service) append(ctx context.Context, log logger.Logger, message string) {
	// The line must land even if the client has gone away.
	if err := s.subLog.Append(context.WithoutCancel(ctx), s.now(), message); err != nil {
		metrics.RecordErrorByComponent("relay", "log_append")
		log.Error(ctx, "append submission log", logger.Error(err))
	}
}

// SMTPEnabled reports whether notifications are sent by email.
func (s *Service) SMTPEnabled() bool {
	return s.sender != nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"smtp":      s.sender != nil,
		"recipient": s.to,
		"received":  s.received.Load(),
		"invalid":   s.invalid.Load(),
		"logged":    s.logged.Load(),
		"sent":      s.sent.Load(),
		"failed":    s.failed.Load(),
	}
	if s.started && s.subLog != nil {
		st := s.subLog.Stats()
		stats["logLines"] = st.Lines
		if !st.LastWrite.IsZero() {
			stats["lastWrite"] = st.LastWrite.Format(time.RFC3339)
		}
	}
	return stats
}

// IsValidation reports whether err is a submission validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, contact.ErrMissingFields) || errors.Is(err, contact.ErrInvalidEmail)
}
