package auth

import (
	"errors"
	"strings"
)

// Role levels mirror the admin-managed user directory.
const (
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
)

// ErrInvalidCredentials indicates an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// User is one directory entry.
type User struct {
	Email    string
	Password string
	Role     string
}

// Directory is the flat credential lookup the login flow checks against. It
// is loaded from configuration and read-only afterwards.
type Directory struct {
	users map[string]User
}

// NewDirectory indexes the configured users by normalized email. Later
// entries win on duplicate emails.
func NewDirectory(users []User) *Directory {
	indexed := make(map[string]User, len(users))
	for _, user := range users {
		email := normalizeEmail(user.Email)
		if email == "" {
			continue
		}
		user.Email = email
		if user.Role == "" {
			user.Role = RoleEmployee
		}
		indexed[email] = user
	}
	return &Directory{users: indexed}
}

// Authenticate checks the email/password pair and returns the user's role.
func (d *Directory) Authenticate(email, password string) (string, error) {
	user, ok := d.users[normalizeEmail(email)]
	if !ok || user.Password != password {
		return "", ErrInvalidCredentials
	}
	return user.Role, nil
}

// RoleOf returns the role for a known email, defaulting to Employee for
// unknown identities the way the original directory did.
func (d *Directory) RoleOf(email string) string {
	if user, ok := d.users[normalizeEmail(email)]; ok {
		return user.Role
	}
	return RoleEmployee
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
