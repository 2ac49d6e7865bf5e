package errors

import "errors"

var (
	ErrEmptySchema     = errors.New("no entity or action types registered")
	ErrInvalidSchema   = errors.New("schema failed structural validation")
	ErrSchemaNotFound  = errors.New("schema not found")
	ErrInvalidEntity   = errors.New("invalid entity type declaration")
	ErrInvalidAction   = errors.New("invalid action type declaration")
	ErrDatabaseFailure = errors.New("schema storage failure")
)
