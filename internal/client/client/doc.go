// Package client contains the client-side building blocks of GophForum:
// a gRPC client for the auth service that attaches the bearer token and maps
// status codes to sentinel errors, and bootstrap helpers for the local
// SQLite state file.
//
// Callers match failures with errors.Is against ErrUnavailable,
// ErrUnauthorized, ErrConflict, ErrInvalidInput and ErrRateLimited.
package client
