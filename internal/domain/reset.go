package domain

import "time"

// PasswordReset is a single-use, time-limited credential for changing a
// password without the old one. Tokens are opaque random strings; consuming
// one marks it used in the same transaction that rewrites the password hash.
type PasswordReset struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
