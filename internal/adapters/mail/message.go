// Package mail composes contact notifications and delivers them over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"net/mail"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Message is a contact notification with a text and an HTML body.
type Message struct {
	From      mail.Address
	To        []mail.Address
	ReplyTo   *mail.Address
	Subject   string
	Text      string
	HTML      string
	Date      time.Time
	MessageID string
}

// Recipients returns the bare envelope addresses of To.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To))
	for _, a := range m.To {
		out = append(out, a.Address)
	}
	return out
}

// Msg converts m into a multipart/alternative go-mail message.
func (m Message) Msg() (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.From.Name, m.From.Address); err != nil {
		return nil, fmt.Errorf("mail: from: %w", err)
	}
	for _, a := range m.To {
		if err := msg.AddToFormat(a.Name, a.Address); err != nil {
			return nil, fmt.Errorf("mail: to %s: %w", a.Address, err)
		}
	}
	if m.ReplyTo != nil {
		if err := msg.ReplyToFormat(m.ReplyTo.Name, m.ReplyTo.Address); err != nil {
			return nil, fmt.Errorf("mail: reply-to: %w", err)
		}
	}
	msg.Subject(m.Subject)
	if m.Date.IsZero() {
		msg.SetDate()
	} else {
		msg.SetDateWithValue(m.Date)
	}
	if m.MessageID != "" {
		msg.SetMessageIDWithValue(m.MessageID)
	} else {
		msg.SetMessageID()
	}
	msg.SetBodyString(gomail.TypeTextPlain, m.Text)
	msg.AddAlternativeString(gomail.TypeTextHTML, m.HTML)
	return msg, nil
}

// Bytes renders the message in RFC 5322 form.
func (m Message) Bytes() ([]byte, error) {
	msg, err := m.Msg()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("mail: render message: %w", err)
	}
	return buf.Bytes(), nil
}
