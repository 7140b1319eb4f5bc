package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bazarblot/marketplace/internal/api/handler"
	"github.com/bazarblot/marketplace/internal/api/metrics"
	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/ports"
)

// Auth verifies the bearer token and injects the caller's principal and
// claims into the context. Every rejection is a 401 with the same body; the
// reason is only logged and counted.
func Auth(verifier ports.TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.TokenFailuresTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				metrics.TokenFailuresTotal.WithLabelValues(string(domain.TokenMalformed)).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				kind, ok := domain.TokenErrorKindOf(err)
				if !ok {
					kind = domain.TokenMalformed
				}
				metrics.TokenFailuresTotal.WithLabelValues(string(kind)).Inc()
				log.Warn().
					Str("reason", string(kind)).
					Str("path", c.Path()).
					Str("remote_ip", c.RealIP()).
					Msg("token rejected")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(handler.ContextKeyClaims, claims)
			c.Set(handler.ContextKeyPrincipal, claims.Principal())

			return next(c)
		}
	}
}
