package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	users    ports.UserRepository
	tokens   ports.TokenIssuer
	throttle ports.LoginThrottle
	policy   PasswordPolicy
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService wires the service. A nil throttle disables login lockout.
func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenIssuer,
	throttle ports.LoginThrottle,
	policy PasswordPolicy,
	log zerolog.Logger,
) *AuthService {
	if throttle == nil {
		throttle = noopThrottle{}
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		throttle: throttle,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

var emailCheck = validator.New()

func checkName(ve *domain.ValidationError, field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		ve.Add(field, field+" is required")
	case utf8.RuneCountInString(value) > domain.MaxUserNameLength:
		ve.Add(field, fmt.Sprintf("%s must be at most %d characters", field, domain.MaxUserNameLength))
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	ve := validatePassword(s.policy, in.Password, in.ConfirmPassword)
	if ve == nil {
		ve = &domain.ValidationError{}
	}
	switch {
	case email == "":
		ve.Add("email", "email is required")
	case emailCheck.Var(email, "email") != nil:
		ve.Add("email", "email must be a valid email")
	}
	checkName(ve, "firstName", in.FirstName)
	checkName(ve, "lastName", in.LastName)
	if !ve.Empty() {
		return nil, ve
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Roles:        domain.NewRoles(domain.RoleUser),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Login never reveals whether the email exists: unknown email and wrong
// password both return ErrInvalidCredentials after a bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	key := domain.NormalizeEmail(email)

	locked, err := s.throttle.Locked(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed")
	} else if locked {
		s.log.Warn().Str("email", email).Msg("login rejected, account locked out")
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		CheckPassword(dummyHash(), password)
		return nil, s.failLogin(ctx, key, email)
	case err != nil:
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, s.failLogin(ctx, key, email)
	}

	if err := s.throttle.Reset(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("login throttle reset failed")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user logged in")
	return &ports.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) failLogin(ctx context.Context, key, email string) error {
	locked, err := s.throttle.RegisterFailure(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle update failed")
	}
	s.log.Info().Str("email", email).Bool("locked", locked).Msg("login failed")
	return domain.ErrInvalidCredentials
}

type noopThrottle struct{}

func (noopThrottle) Locked(context.Context, string) (bool, error) { return false, nil }
func (noopThrottle) RegisterFailure(context.Context, string) (bool, error) { return false, nil }
func (noopThrottle) Reset(context.Context, string) error { return nil }
