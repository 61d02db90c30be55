package errs

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidRequest = errors.New("invalid request")
)
