package service

import "errors"

// ValidationError is a client error with a human-readable Spanish message;
// handlers render it as a 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// ErrForbidden means the caller is neither the resource owner nor an admin.
var ErrForbidden = errors.New("forbidden")
