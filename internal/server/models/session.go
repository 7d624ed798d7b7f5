package models

import "time"

// Session is the persisted half of a refresh token. A row exists exactly as
// long as the token is redeemable: deleting the row revokes the token no
// matter how much cryptographic lifetime it has left.
type Session struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
