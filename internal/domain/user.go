package domain

import "time"

// UserRole enumerates marketplace roles.
type UserRole string

const (
	RoleStudent    UserRole = "STUDENT"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleAdmin      UserRole = "ADMIN"
)

// ParseUserRole validates a role string.
func ParseUserRole(raw string) (UserRole, bool) {
	switch UserRole(raw) {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return UserRole(raw), true
	}
	return "", false
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for marketplace accounts.
type User struct {
	ID           string
	Name         string
	Email        Email
	PasswordHash string
	Role         UserRole
	Bio          string
	AvatarURL    *WebURL
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Suspend marks the account suspended.
func (u *User) Suspend() {
	u.Status = UserStatusSuspended
}

// Reinstate re-activates a suspended account.
func (u *User) Reinstate() {
	u.Status = UserStatusActive
}
