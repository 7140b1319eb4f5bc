package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

// Context keys written by middleware.Auth.
const (
	ContextKeyPrincipal = "principal"
	ContextKeyClaims    = "claims"
)

// ctxPrincipal extracts the caller injected by the Auth middleware. A missing
// or empty principal means the route was wired without Auth; reject with 401
// rather than act anonymously.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := c.Get(ContextKeyPrincipal).(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}
