package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrDuplicateEmail = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrTooManyAttempts = errors.New("too many failed login attempts")

// MaxUserNameLength bounds FirstName and LastName, in characters.
const MaxUserNameLength = 50

// User models a registered marketplace account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Roles        Roles     `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FullName joins first and last name the way profile screens display it.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Summary is the public projection of the user, safe to embed in responses.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// UserSummary is the owner view joined onto products at read time.
type UserSummary struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

func (s UserSummary) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// NormalizeEmail is the key used for uniqueness and lookups; email comparison
// is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
