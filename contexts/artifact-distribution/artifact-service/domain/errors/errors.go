package errors

import "errors"

var (
	ErrArtifactNotFound      = errors.New("artifact not found")
	ErrArtifactAlreadyExists = errors.New("artifact version already exists")
	ErrInvalidCoordinates    = errors.New("artifact coordinates are not valid")
	ErrAccessDenied          = errors.New("access denied by policy")
)
