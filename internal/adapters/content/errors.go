package content

import "errors"

// Sentinel errors for content fetches.
var (
	ErrStatus    = errors.New("content: unexpected status")
	ErrDecode    = errors.New("content: invalid json")
	ErrTransport = errors.New("content: transport failure")
)
