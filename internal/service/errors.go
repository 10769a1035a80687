package serviceerrors

import "errors"

var (
	ErrContextCanceled  = errors.New("context canceled")
	ErrDeadlineExceeded = errors.New("deadline exceeded")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDeserialization  = errors.New("malformed persisted cart")
	ErrPersistenceWrite = errors.New("failed to persist cart")
)
