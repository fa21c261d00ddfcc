// Package api is the wire contract of the GophForum auth service: request
// and response messages, the gRPC service description and a typed client.
// Messages travel as JSON through the codec registered in codec.go.
package api

import "time"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthenticateRequest struct {
	Token string `json:"token"`
}

type AuthenticateResponse struct {
	Valid bool `json:"valid"`
}

// WhoAmIRequest carries no fields; the caller is identified by the bearer
// token in the authorization metadata.
type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
