package models

import "time"

// Session binds an opaque bearer token to a user until ExpiresAt.
type Session struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ValidAt reports whether the session is still honored at now.
func (s Session) ValidAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
