package entity

import (
	"regexp"
	"strings"
	"time"
)

// Role is the access level of a directory user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the aggregate root of the directory.
// Password always holds a bcrypt hash once the record has been persisted;
// the timestamps are server-assigned and never taken from client input.
type User struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	Password            string    `json:"-"`
	Cpf                 string    `json:"cpf"`
	Role                Role      `json:"role"`
	FcmRegID            string    `json:"fcmRegId,omitempty"`
	SalesProviderUserID int64     `json:"salesProviderUserId,omitempty"`
	CrmProviderUserID   int64     `json:"crmProviderUserId,omitempty"`
	Enabled             bool      `json:"enabled"`
	LastLogin           time.Time `json:"lastLogin,omitempty"`
	LastFcmRegister     time.Time `json:"lastFcmRegister,omitempty"`
	LastUpdate          time.Time `json:"lastUpdate,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

// Validate checks the fields every write requires. Password presence is
// checked separately because updates may legitimately omit it.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	if !emailPattern.MatchString(u.Email) {
		return &ValidationError{Field: "email", Reason: "is not a valid email address"}
	}
	if string(u.Role) == "" {
		return &ValidationError{Field: "role", Reason: "is required"}
	}
	if !u.Role.Valid() {
		return &ValidationError{Field: "role", Reason: "must be ADMIN or USER"}
	}
	if strings.TrimSpace(u.Cpf) == "" {
		return &ValidationError{Field: "cpf", Reason: "is required"}
	}
	return nil
}
