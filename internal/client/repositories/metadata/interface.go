// Package metadata is the key/value store of the client's local state file.
// It holds the session of the logged-in user between CLI invocations.
package metadata

import (
	"context"
)

// Keys used by the client.
const (
	KeyServer    = "server"
	KeyUsername  = "username"
	KeyToken     = "token"
	KeyExpiresAt = "expires_at"
)

type Repository interface {
	// Get returns common.ErrorNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
