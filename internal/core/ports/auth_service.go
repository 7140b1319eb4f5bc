package ports

import (
	"context"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenVerifier returns a *domain.TokenError for every rejected token.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}
