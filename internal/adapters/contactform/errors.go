package contactform

import "errors"

// Sentinel errors returned by the form handler.
var (
	ErrBusy       = errors.New("contact form: submission already in progress")
	ErrInvalidURL = errors.New("contact form: relay url must be absolute")
)
