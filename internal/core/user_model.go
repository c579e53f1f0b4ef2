package core

import (
	"errors"
	"strings"
)

// User represents an operator account managed by the backend.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"usuario"`
	FullName string `json:"nombre"`
	Email    string `json:"email"`
	Role     string `json:"rol"`
	IsActive bool   `json:"activo"`
	// Password is only sent on create/update and never returned by the backend.
	Password string `json:"password,omitempty"`
}

const (
	RoleAdmin  = "admin"
	RoleSeller = "vendedor"
)

// Session carries the authenticated operator's identity and backend bearer token.
// It is passed explicitly to every operation that talks to the backend.
type Session struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"-"`
}

// ErrNoSession is returned when an operation requires a logged-in operator.
var ErrNoSession = errors.New("no active session")

// Valid reports whether the session carries a usable bearer token.
func (s *Session) Valid() bool {
	return s != nil && strings.TrimSpace(s.Token) != ""
}

// IsAdmin reports whether the operator may manage users.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
