package service

import "errors"

// Sentinel errors returned by the relay.
var (
	ErrSendFailed = errors.New("contact email send failed")
	ErrNotStarted = errors.New("contact relay not started")
)
