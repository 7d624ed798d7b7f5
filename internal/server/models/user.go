package models

import "time"

// UserStatus tracks the account lifecycle. Pending accounts have been
// invited but not confirmed; disabled accounts fail every credential check
// with UserDisabled.
type UserStatus string

const (
	UserPending   UserStatus = "pending"
	UserConfirmed UserStatus = "confirmed"
	UserDisabled  UserStatus = "disabled"
)

// User is an account row. PwdHash is a bcrypt hash; Code holds the pending
// sign-up or password-reset confirmation code, empty when none is
// outstanding.
type User struct {
	ID        string
	Email     string
	Name      string
	PwdHash   []byte
	Status    UserStatus
	Code      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
