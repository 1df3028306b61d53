package errors

import (
	stderrors "errors"
)

// HasCode reports whether err (or anything it wraps) carries the given code
func HasCode(err error, code Code) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code.Equals(code)
	}
	return false
}

// GetCode returns the code string of err, or "" for foreign error types
func GetCode(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code.String()
	}
	return ""
}

// GetContext returns the context map of err, or nil for foreign error types
func GetContext(err error) map[string]string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Context
	}
	return nil
}
