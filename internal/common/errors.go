// Package common defines shared constants and sentinel errors used across
// shack components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Auth errors. A failed password check must surface this value so the
	// transport rejects the connection instead of downgrading it.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
