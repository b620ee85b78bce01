package types

import "time"

// Roles assignable to a registered user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
// The single privileged admin identity is configured, not stored, and never
// appears in this table.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"_id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`

	// Role is the user's authorization level ("user" or "admin").
	Role string `json:"role" db:"role"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
