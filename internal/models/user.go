package models

import "gorm.io/gorm"

// Roles a user account can hold.
const (
	RoleUser      = "user"
	RoleDeveloper = "developer"
	RoleAdmin     = "admin"
)

// User represents a user in the system.
type User struct {
	gorm.Model
	Nickname     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`
}

// CanPublish reports whether the user may manage games in the store.
func (u User) CanPublish() bool {
	return u.Role == RoleDeveloper || u.Role == RoleAdmin
}
