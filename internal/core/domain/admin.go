package domain

import (
	"strings"
	"time"
)

// Role is the privilege level of an administrator.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
	RoleModerator  Role = "moderator"
)

// DefaultRole is assigned when registration does not name a role.
const DefaultRole = RoleAdmin

const (
	MinUsernameLength = 4
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// ParseRole normalises s and reports whether it names a known role.
// An empty string resolves to DefaultRole.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultRole, true
	}
	switch r := Role(s); r {
	case RoleAdmin, RoleSuperAdmin, RoleModerator:
		return r, true
	}
	return "", false
}

// Admin models the only privileged principal of the site backend.
//
// PasswordHash and RefreshToken are never serialised; read paths that serve
// an Admin back to a client load it without either field.
type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns a copy of a with the credential fields stripped.
func (a *Admin) Public() *Admin {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PasswordHash = ""
	clone.RefreshToken = ""
	return &clone
}

// NormalizeEmail lowercases and trims an address; emails are unique
// case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SystemActor is the principal used by the operator console. It carries
// superadmin rights and never exists in storage.
var SystemActor = &Admin{ID: "system", Name: "system", Username: "system", Role: RoleSuperAdmin}
