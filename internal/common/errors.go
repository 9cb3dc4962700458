// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)
