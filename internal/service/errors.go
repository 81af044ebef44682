package service

import "errors"

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrNotAuthorized     = errors.New("not authorized")     // 403
	ErrInsufficientStock = errors.New("insufficient stock") // 400
	ErrInvalidState      = errors.New("invalid state")      // 400
)
