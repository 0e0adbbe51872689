package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const (
	implicitTLSPort = 465
	defaultTimeout  = 30 * time.Second
)

// ErrNoCredentials is returned when the sender has no user or password.
var ErrNoCredentials = errors.New("mail: smtp credentials missing")

// SMTPSender sends one message per call: STARTTLS when offered, PLAIN auth,
// one transaction. Port 465 uses implicit TLS instead.
type SMTPSender struct {
	host      string
	port      int
	user      string
	pass      string
	timeout   time.Duration
	tlsConfig *tls.Config
}

// SMTPOption configures an SMTPSender.
type SMTPOption func(*SMTPSender)

// WithSMTPTimeout bounds the dial and each SMTP command.
func WithSMTPTimeout(d time.Duration) SMTPOption {
	return func(s *SMTPSender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTLSConfig overrides the TLS configuration.
func WithTLSConfig(cfg *tls.Config) SMTPOption {
	return func(s *SMTPSender) {
		if cfg != nil {
			s.tlsConfig = cfg
		}
	}
}

// NewSMTPSender builds a sender for host:port authenticating as user.
func NewSMTPSender(host string, port int, user, pass string, opts ...SMTPOption) *SMTPSender {
	s := &SMTPSender{
		host:      host,
		port:      port,
		user:      user,
		pass:      pass,
		timeout:   defaultTimeout,
		tlsConfig: &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SMTPSender) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.user),
		gomail.WithPassword(s.pass),
		gomail.WithTimeout(s.timeout),
		gomail.WithTLSConfig(s.tlsConfig),
	}
	if s.port == implicitTLSPort {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	return gomail.NewClient(s.host, opts...)
}

// Send delivers msg. There is no retry.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.user == "" || s.pass == "" {
		return ErrNoCredentials
	}
	m, err := msg.Msg()
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}
