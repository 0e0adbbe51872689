// Package contact holds the contact submission rules shared by the form
// handler and the mail relay.
package contact

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/okian/montpellier/internal/domain/model"
)

// Field length caps, in characters.
const (
	MaxFieldLength   = 500
	MaxCommentLength = 2000
)

// Messages shown by the form for client-side validation failures.
const (
	MsgMissingFields = "Por favor completa todos los campos obligatorios."
	MsgInvalidEmail  = "Por favor ingresa un correo electrónico válido."
)

// Messages returned by the relay.
const (
	MsgRelayMissingFields = "Todos los campos obligatorios deben estar completos."
	MsgRelayInvalidEmail  = "El correo electrónico no es válido."
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Sanitize trims every field and caps it at its limit.
func Sanitize(s model.ContactSubmission) model.ContactSubmission {
	return model.ContactSubmission{
		Nombre:      Clean(s.Nombre, MaxFieldLength),
		Email:       Clean(s.Email, MaxFieldLength),
		Telefono:    Clean(s.Telefono, MaxFieldLength),
		Comentarios: Clean(s.Comentarios, MaxCommentLength),
	}
}

// Clean trims v and keeps at most limit characters.
func Clean(v string, limit int) string {
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) <= limit {
		return v
	}
	n := 0
	for i := range v {
		if n == limit {
			return v[:i]
		}
		n++
	}
	return v
}

// Validate checks the required fields and the email shape of a sanitized
// submission. It returns ErrMissingFields or ErrInvalidEmail.
func Validate(s model.ContactSubmission) error {
	if s.Nombre == "" || s.Email == "" || s.Telefono == "" {
		return ErrMissingFields
	}
	if !ValidEmail(s.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidEmail reports whether email looks like local@domain.tld.
func ValidEmail(email string) bool {
	return emailShape.MatchString(email)
}

// ValidRelayEmail is the relay's stricter check: the form shape plus an
// RFC 5322 bare address.
func ValidRelayEmail(email string) bool {
	if !ValidEmail(email) {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
