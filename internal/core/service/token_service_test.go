package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

var testTokenConfig = TokenConfig{
	SigningKey: []byte("test-signing-key-with-enough-entropy"),
	Issuer:     "BazarBlot",
	Audience:   "BazarBlotUsers",
	TTL:        time.Hour,
}

func newTestTokenService(t *testing.T, now time.Time) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testTokenConfig)
	require.NoError(t, err)
	svc.now = func() time.Time { return now }
	return svc
}

func testUser() *domain.User {
	return &domain.User{
		ID:        "7f2c1a4e-0000-4000-8000-000000000001",
		Email:     "a@x.com",
		FirstName: "Ann",
		LastName:  "Xu",
		Roles:     domain.NewRoles(domain.RoleUser, domain.RoleAdmin),
	}
}

func requireTokenKind(t *testing.T, err error, want domain.TokenErrorKind) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	kind, ok := domain.TokenErrorKindOf(err)
	require.True(t, ok, "expected *domain.TokenError, got %T", err)
	assert.Equal(t, want, kind)
}

func TestNewTokenService_EmptyKey(t *testing.T) {
	_, err := NewTokenService(TokenConfig{Issuer: "x", Audience: "y"})
	require.Error(t, err)
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	svc, err := NewTokenService(TokenConfig{SigningKey: []byte("k")})
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, svc.TTL())
}

func TestTokenService_IssueVerify_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, now)
	user := testUser()

	token, err := svc.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "Ann Xu", claims.Name)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "Ann", claims.FirstName)
	assert.Equal(t, "Xu", claims.LastName)
	assert.Equal(t, domain.Roles{domain.RoleUser, domain.RoleAdmin}, claims.Roles)
	assert.True(t, claims.IssuedAt.Equal(now))
	assert.True(t, claims.ExpiresAt.Equal(now.Add(time.Hour)))
}

func TestTokenService_Issue_SubSecondClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 750_000_000, time.UTC)
	svc := newTestTokenService(t, now)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.IssuedAt.Equal(now.Truncate(time.Second)))
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestTokenService_Verify_Expiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, issued)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(time.Hour - time.Second) }
	_, err = svc.Verify(token)
	require.NoError(t, err, "token must still be valid just before expiry")

	svc.now = func() time.Time { return issued.Add(time.Hour) }
	_, err = svc.Verify(token)
	requireTokenKind(t, err, domain.TokenExpired)
}

func TestTokenService_Verify_TamperedSignature(t *testing.T) {
	svc := newTestTokenService(t, time.Now())
	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	sigStart := strings.LastIndex(token, ".") + 1
	pos := sigStart + (len(token)-sigStart)/2
	tampered := []byte(token)
	if tampered[pos] == 'A' {
		tampered[pos] = 'B'
	} else {
		tampered[pos] = 'A'
	}

	_, err = svc.Verify(string(tampered))
	requireTokenKind(t, err, domain.TokenBadSignature)
}

func TestTokenService_Verify_TamperedPayload(t *testing.T) {
	svc := newTestTokenService(t, time.Now())
	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	for i := 0; i < len(parts[1]); i++ {
		tampered := []byte(parts[1])
		if tampered[i] == 'x' {
			tampered[i] = 'y'
		} else {
			tampered[i] = 'x'
		}
		forged := parts[0] + "." + string(tampered) + "." + parts[2]
		_, err := svc.Verify(forged)
		requireTokenKind(t, err, domain.TokenBadSignature)
	}
}

func TestTokenService_Verify_ForgedClaimsWithOtherKey(t *testing.T) {
	svc := newTestTokenService(t, time.Now())
	other := testTokenConfig
	other.SigningKey = []byte("attacker-key")
	forger, err := NewTokenService(other)
	require.NoError(t, err)

	token, err := forger.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(token)
	requireTokenKind(t, err, domain.TokenBadSignature)
}

func TestTokenService_Verify_IssuerAudienceMismatch(t *testing.T) {
	svc := newTestTokenService(t, time.Now())

	wrongIssuer := testTokenConfig
	wrongIssuer.Issuer = "SomeoneElse"
	wrongAudience := testTokenConfig
	wrongAudience.Audience = "OtherApp"

	for name, cfg := range map[string]TokenConfig{"issuer": wrongIssuer, "audience": wrongAudience} {
		t.Run(name, func(t *testing.T) {
			issuer, err := NewTokenService(cfg)
			require.NoError(t, err)
			token, err := issuer.Issue(testUser())
			require.NoError(t, err)

			_, err = svc.Verify(token)
			requireTokenKind(t, err, domain.TokenClaimsMismatch)
		})
	}
}

func TestTokenService_Verify_WrongAlgorithm(t *testing.T) {
	svc := newTestTokenService(t, time.Now())
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    testTokenConfig.Issuer,
		Audience:  jwt.ClaimStrings{testTokenConfig.Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testTokenConfig.SigningKey)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	requireTokenKind(t, err, domain.TokenBadSignature)
}

func TestTokenService_Verify_MissingSubject(t *testing.T) {
	svc := newTestTokenService(t, time.Now())
	user := testUser()
	user.ID = ""
	token, err := svc.Issue(user)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	requireTokenKind(t, err, domain.TokenClaimsMismatch)
}

func TestTokenService_Verify_Malformed(t *testing.T) {
	svc := newTestTokenService(t, time.Now())
	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := svc.Verify(token)
		requireTokenKind(t, err, domain.TokenMalformed)
	}
}
