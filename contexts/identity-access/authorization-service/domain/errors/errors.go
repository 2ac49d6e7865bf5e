package errors

import "errors"

var (
	ErrInvalidPrincipal    = errors.New("principal hrn is not valid")
	ErrInvalidAction       = errors.New("action must not be blank")
	ErrInvalidResource     = errors.New("resource hrn is not valid")
	ErrInvalidContext      = errors.New("context value type is not supported")
	ErrEvaluationFailed    = errors.New("policy evaluation failed")
	ErrPolicyNotFound      = errors.New("policy not found")
	ErrAttachmentNotFound  = errors.New("policy attachment not found")
	ErrScpResolutionFailed = errors.New("control policy resolution failed")
)
