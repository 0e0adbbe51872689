package site

import "errors"

// Sentinel errors for page assembly.
var (
	ErrPageNotFound = errors.New("page template not found")
	ErrTemplate     = errors.New("page template invalid")
	ErrRender       = errors.New("page render failed")
)
