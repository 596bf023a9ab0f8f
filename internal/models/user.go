package models

import (
	"fmt"
	"strings"
)

// Role is the staff role a session acts under
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RoleNurse   Role = "NURSE"
	RoleBilling Role = "BILLING"
)

// Roles lists every known role in display order
var Roles = []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleBilling}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleBilling:
		return true
	}
	return false
}

// DashboardPath is the landing screen for the role
func (r Role) DashboardPath() string {
	return "/" + strings.ToLower(string(r)) + "/dashboard"
}

// ParseRole parses a role name case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// UserIdentity is the acting staff member bound to a session
type UserIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
}

// Valid reports whether the identity is complete enough to act under
func (u *UserIdentity) Valid() bool {
	return u != nil && u.ID > 0 && u.Role.Valid()
}

// LoginRequest is the credential payload sent to the auth endpoint
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by a successful login
type AuthResponse struct {
	Token string       `json:"token"`
	Type  string       `json:"type"`
	User  UserIdentity `json:"user"`
}

// StaffUser is a user record as listed by the user endpoints
type StaffUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role"`
	Active   bool   `json:"active"`
}
