package service

import (
	"fmt"
	"sync"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

const minPasswordLength = 6

// PasswordPolicy describes what a new password must contain.
type PasswordPolicy struct {
	MinLength      int
	RequireComplex bool // upper-case, lower-case and a digit
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: minPasswordLength, RequireComplex: true}
}

// Check returns the field message for a password that breaks the policy, or "".
func (p PasswordPolicy) Check(password string) string {
	minLen := p.MinLength
	if minLen <= 0 {
		minLen = minPasswordLength
	}
	if len([]rune(password)) < minLen {
		return fmt.Sprintf("password must be at least %d characters", minLen)
	}
	if !p.RequireComplex {
		return ""
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "password must contain an upper-case letter, a lower-case letter and a digit"
	}
	return ""
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when the email is unknown so a failed login
// costs the same either way.
var dummyHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(h)
})

func validatePassword(policy PasswordPolicy, password, confirm string) *domain.ValidationError {
	ve := &domain.ValidationError{}
	if password == "" {
		ve.Add("password", "password is required")
	} else if msg := policy.Check(password); msg != "" {
		ve.Add("password", msg)
	}
	if confirm != password {
		ve.Add("confirmPassword", "passwords do not match")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}
