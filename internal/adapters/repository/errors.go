package repository

import "errors"

// Sentinel kinds for submission log errors.
var (
	ErrClosed       = errors.New("submission log closed")
	ErrAppendFailed = errors.New("submission log append failed")
)
