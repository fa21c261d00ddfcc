// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered identity. ID is assigned by the store and never
// reused. Email is optional; an empty string is stored as NULL.
type User struct {
	ID         int64
	UserName   string
	Email      string
	Credential Credential
	CreatedAt  time.Time
}

// Credential is the durable form of a password: a PHC-encoded argon2id hash
// and the base64 salt embedded in it.
type Credential struct {
	Hash string
	Salt string
}
