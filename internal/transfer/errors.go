package transfer

import "errors"

var (
	ErrUnauthorized  = errors.New("not signed in")
	ErrForbidden     = errors.New("not allowed")
	ErrNotFound      = errors.New("file not found")
	ErrInvalidUpload = errors.New("invalid upload")
	ErrStorage       = errors.New("storage failure")
	ErrPersistence   = errors.New("persistence failure")
)
