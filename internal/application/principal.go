package application

import "github.com/salestrack/messenger-service/internal/domain/entity"

// Principal is the authenticated-caller view of a user: only the fields
// an authorization decision needs. It is built on demand from token
// claims or from a User and never stored.
type Principal struct {
	Email string
	Role  entity.Role
}

// PrincipalOf derives the auth view from a directory record.
func PrincipalOf(u *entity.User) Principal {
	return Principal{Email: u.Email, Role: u.Role}
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == entity.RoleAdmin
}
