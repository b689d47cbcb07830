package models

import (
	"fmt"
	"time"
)

// Role is the closed set of user roles. Authorization points switch on it
// exhaustively rather than comparing ad-hoc strings.
type Role string

const (
	RoleParent Role = "parent"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// ParseRole converts a string to a Role, rejecting anything outside the enum.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleParent, RoleStaff, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role: %q", s)
	}
}

// User represents a parent, staff member, or admin account
type User struct {
	ID             string
	Email          string
	PasswordHash   string
	Name           string
	Phone          string
	Role           Role
	OrganizationID string
	OAuthProvider  string
	OAuthSubject   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
