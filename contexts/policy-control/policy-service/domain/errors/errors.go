package errors

import "errors"

var (
	ErrInvalidPolicyID      = errors.New("invalid policy id")
	ErrEmptyPolicyContent   = errors.New("policy content is empty")
	ErrPolicyContentTooLong = errors.New("policy content exceeds size bound")
	ErrInvalidPolicyContent = errors.New("policy content is not a well-formed policy document")
	ErrPolicyAlreadyExists  = errors.New("policy already exists")
	ErrPolicyNotFound       = errors.New("policy not found")
	ErrDeletionNotAllowed   = errors.New("policy deletion not allowed")
	ErrHasDependencies      = errors.New("policy still has dependent resources")
	ErrInvalidPagination    = errors.New("invalid pagination parameters")
)
