// Package common defines shared constants, sentinel errors and small helpers
// used across client and server layers of GophForum. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors: no matching identity, username or token. Expected outcome.
	ErrorNotFound = errors.New("not found")

	// Well-formed input that failed a check: wrong password, expired token,
	// empty username.
	ErrorInvalid = errors.New("invalid")

	// Uniqueness violation at the store boundary (username or email taken).
	ErrorConflict = errors.New("conflict")

	// Persistence I/O or integrity fault.
	ErrorStorage = errors.New("storage error")

	// Cryptographic subsystem faults.
	ErrorHashing      = errors.New("hashing error")
	ErrorVerification = errors.New("verification error")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
)
