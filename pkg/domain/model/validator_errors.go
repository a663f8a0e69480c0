package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors. Every input error wraps ErrValidation so callers can
// reject the request before any state is touched.
var (
	ErrValidation      = goerr.New("validation failed")
	ErrMissingRequired = goerr.Wrap(ErrValidation, "required field is missing")
	ErrInvalidValue    = goerr.Wrap(ErrValidation, "invalid value")
	ErrInvalidState    = goerr.Wrap(ErrValidation, "transition not allowed in current state")
)

// Context keys for error values
const (
	FieldKey  = "field"
	ValueKey  = "value"
	StatusKey = "status"
)
