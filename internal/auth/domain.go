package auth

import "time"

// Roles understood by the application. Masters manage settings and users;
// staff use the day-to-day screens.
const (
	RoleMaster = "master"
	RoleStaff  = "staff"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
