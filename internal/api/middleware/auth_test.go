package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bazarblot/marketplace/internal/api/handler"
	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/service"
)

type stubVerifier struct {
	claims *domain.Claims
	err    error
}

func (s stubVerifier) Verify(string) (*domain.Claims, error) {
	return s.claims, s.err
}

func newTokenService(t *testing.T) *service.TokenService {
	t.Helper()
	svc, err := service.NewTokenService(service.TokenConfig{
		SigningKey: []byte("middleware-test-key"),
		Issuer:     "BazarBlot",
		Audience:   "BazarBlotUsers",
		TTL:        time.Hour,
	})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return svc
}

func runAuth(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (echo.Context, *httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return c, rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := newTokenService(t)
	user := &domain.User{
		ID: "user-1", Email: "ani@example.com", FirstName: "Ani", LastName: "Petrosyan",
		Roles: domain.NewRoles(domain.RoleUser, domain.RoleAdmin),
	}
	signed, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	c, rec, called := runAuth(t, Auth(tokens, zerolog.Nop()), "Bearer "+signed)
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	p, ok := c.Get(handler.ContextKeyPrincipal).(domain.Principal)
	if !ok || p.ID != "user-1" || !p.HasRole(domain.RoleAdmin) {
		t.Fatalf("principal not set: %+v", p)
	}
	claims, ok := c.Get(handler.ContextKeyClaims).(*domain.Claims)
	if !ok || claims.Email != "ani@example.com" {
		t.Fatalf("claims not set: %+v", claims)
	}
}

func TestAuthMiddleware_LowercaseScheme(t *testing.T) {
	v := stubVerifier{claims: &domain.Claims{Subject: "user-1", Roles: domain.NewRoles(domain.RoleUser)}}
	_, rec, called := runAuth(t, Auth(v, zerolog.Nop()), "bearer abc")
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected lowercase scheme to be accepted, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tokens := newTokenService(t)
	other, err := service.NewTokenService(service.TokenConfig{
		SigningKey: []byte("some-other-key"),
		Issuer:     "BazarBlot",
		Audience:   "BazarBlotUsers",
		TTL:        time.Hour,
	})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	forged, err := other.Issue(&domain.User{ID: "user-1", Roles: domain.NewRoles(domain.RoleAdmin)})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"empty token", "Bearer "},
		{"malformed token", "Bearer not-a-token"},
		{"foreign signature", "Bearer " + forged},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, rec, called := runAuth(t, Auth(tokens, zerolog.Nop()), tc.header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_ExpiredAndBadSignatureLookAlike(t *testing.T) {
	bodies := map[domain.TokenErrorKind]string{}
	for _, kind := range []domain.TokenErrorKind{domain.TokenExpired, domain.TokenBadSignature} {
		v := stubVerifier{err: &domain.TokenError{Kind: kind, Err: errors.New("boom")}}
		_, rec, called := runAuth(t, Auth(v, zerolog.Nop()), "Bearer abc")
		if called || rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", kind, rec.Code)
		}
		bodies[kind] = rec.Body.String()
	}
	if bodies[domain.TokenExpired] != bodies[domain.TokenBadSignature] {
		t.Fatalf("responses differ: %q vs %q", bodies[domain.TokenExpired], bodies[domain.TokenBadSignature])
	}
}
