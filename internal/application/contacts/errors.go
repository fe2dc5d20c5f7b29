package contacts

import "errors"

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrMissingName     = errors.New("contact name is required")
)
