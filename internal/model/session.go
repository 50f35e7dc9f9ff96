package model

import "time"

// Session is the audit record for an issued session cookie. The cookie
// itself is the capability; this row exists for bookkeeping and revocation.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// MagicLink is a single-use login token. Only the SHA-256 hash of the raw
// token is stored; the raw value travels in the emailed link and nowhere else.
type MagicLink struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at"`
	Attempts   int        `json:"attempts"`
	CreatedAt  time.Time  `json:"created_at"`
}
