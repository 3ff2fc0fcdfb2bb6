package models

import "time"

// User roles. The first registered user becomes the admin and owns
// category administration; everyone after that is a regular user.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents application user.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may manage categories and audit logs.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
