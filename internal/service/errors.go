package service

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrDuplicateObligation = errors.New("duplicate payment obligation")
	ErrPersistence         = errors.New("persistence failure")
)
