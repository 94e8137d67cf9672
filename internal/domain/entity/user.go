package entity

import (
	"time"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the aggregate root for the account domain. Password holds the
// bcrypt hash and must never appear in an outbound representation; Public()
// is the only serialization path handlers use.
type User struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
	Active   bool

	// PasswordChangedAt invalidates tokens issued before the last password
	// change without a server-side revocation list.
	PasswordChangedAt *time.Time

	// PasswordResetToken stores the sha256 hex digest of the value mailed to
	// the user; the plain value never touches the database. A non-nil token
	// always has a non-nil expiry.
	PasswordResetToken   *string
	PasswordResetExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChangedPasswordAfter reports whether the password was changed at or after
// the given token issuance time. JWT issued-at has second precision, so both
// sides are compared at second granularity.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() >= issuedAt.Unix()
}

// Public returns the client-facing representation, without the password hash
// or reset-token bookkeeping.
func (u *User) Public() map[string]any {
	return map[string]any{
		"id":    u.ID,
		"role":  u.Role,
		"name":  u.Name,
		"email": u.Email,
	}
}
