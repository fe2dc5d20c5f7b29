package contact

import "errors"

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrCompanyNotFound = errors.New("company not found")
)
