package models

import "errors"

var (
	ErrAuth              = errors.New("authentication failed")
	ErrPersistence       = errors.New("persistence failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
)
