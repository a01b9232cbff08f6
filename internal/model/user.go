package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Handlers define their own response types; this
// struct is used by the repository and auth layers only.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  PinHash      – bcrypt hashed PIN, empty when no PIN is set.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	PinHash      string    // users.pin_hash (nullable)
	CreatedAt    time.Time // users.created_at
}

// HasPin reports whether the user configured a PIN.
func (u User) HasPin() bool { return u.PinHash != "" }

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
