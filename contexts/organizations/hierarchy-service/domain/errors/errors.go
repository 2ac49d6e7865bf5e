package errors

import "errors"

var (
	ErrOuNotFound           = errors.New("organizational unit not found")
	ErrOuAlreadyExists      = errors.New("organizational unit already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrScpNotFound          = errors.New("service control policy not found")
	ErrScpAlreadyExists     = errors.New("service control policy already exists")
	ErrSourceOuNotFound     = errors.New("source organizational unit not found")
	ErrTargetOuNotFound     = errors.New("target organizational unit not found")
	ErrAccountNotInSource   = errors.New("account is not a member of the source unit")
	ErrNodeNotFound         = errors.New("hierarchy node not found")
	ErrInvalidName          = errors.New("name must not be blank")
	ErrInvalidDocument      = errors.New("control policy document is not valid")
	ErrStorageFailure       = errors.New("hierarchy storage failure")
)
