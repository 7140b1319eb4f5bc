package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

const defaultTokenTTL = 60 * time.Minute

// TokenConfig is built once at startup and injected into TokenService.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// sessionClaims is the JWT payload. Registered claims carry sub/iss/aud/iat/exp.
type sessionClaims struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	FirstName string   `json:"given_name"`
	LastName  string   `json:"family_name"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. It keeps no state
// besides its configuration, so it is safe for concurrent use.
type TokenService struct {
	cfg    TokenConfig
	parser *jwt.Parser
	now    func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("token service: signing key must not be empty")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTokenTTL
	}
	s := &TokenService{cfg: cfg, now: time.Now}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
		jwt.WithStrictDecoding(),
	)
	return s, nil
}

// TTL reports the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.cfg.TTL }

// Issue signs a claim set for user valid from now until now+TTL.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	// NumericDate has second precision; truncating keeps exp-iat equal to TTL.
	now := s.now().UTC().Truncate(time.Second)
	claims := sessionClaims{
		Name:      user.FullName(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Roles:     user.Roles.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and expiry. Every failure is a
// *domain.TokenError.
func (s *TokenService) Verify(token string) (*domain.Claims, error) {
	var claims sessionClaims
	_, err := s.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.cfg.SigningKey, nil
	})
	if err != nil {
		return nil, &domain.TokenError{Kind: s.classify(token, err), Err: err}
	}

	if claims.Subject == "" {
		return nil, &domain.TokenError{Kind: domain.TokenClaimsMismatch, Err: errors.New("missing subject")}
	}
	roles, err := domain.ParseRoles(claims.Roles)
	if err != nil {
		return nil, &domain.TokenError{Kind: domain.TokenClaimsMismatch, Err: err}
	}

	out := &domain.Claims{
		Subject:   claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Roles:     roles,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func (s *TokenService) classify(token string, err error) domain.TokenErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.TokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.TokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return domain.TokenClaimsMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return s.classifyMalformed(token)
	default:
		return domain.TokenMalformed
	}
}

// classifyMalformed separates garbage from a well-formed token whose header or
// payload was altered after signing: the latter no longer matches its HMAC.
func (s *TokenService) classifyMalformed(token string) domain.TokenErrorKind {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return domain.TokenMalformed
	}
	sig, err := s.parser.DecodeSegment(parts[2])
	if err != nil {
		return domain.TokenBadSignature
	}
	signing := parts[0] + "." + parts[1]
	if jwt.SigningMethodHS256.Verify(signing, sig, s.cfg.SigningKey) != nil {
		return domain.TokenBadSignature
	}
	return domain.TokenMalformed
}
