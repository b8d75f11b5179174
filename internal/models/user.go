package models

import (
	"time"
)

// Roles form a closed set. Editors can manage guide content; admins can
// additionally manage users and settings.
const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEditor
}

type User struct {
	ID           string
	Email        string
	PasswordHash *string // nil when the account has no usable password
	Name         string
	Role         string // "ADMIN" or "EDITOR"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
