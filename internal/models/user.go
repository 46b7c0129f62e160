// Package models contains data structures for the application's domain models.
package models

// User roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents a provisioned account. The user set is fixed at startup and
// never mutated, so the struct carries no lifecycle timestamps.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SessionIdentity is the identity snapshot captured at login time. The role is
// not re-read from the user record on later requests.
type SessionIdentity struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the identity snapshot holds the admin role.
func (i *SessionIdentity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
