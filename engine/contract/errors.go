package contract

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrUnknownAction = errors.New("unknown action")
)
