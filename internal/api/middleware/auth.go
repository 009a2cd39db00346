package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/humanityclub/hco-backend/internal/api/handler"
	"github.com/humanityclub/hco-backend/internal/api/metrics"
	"github.com/humanityclub/hco-backend/internal/core/domain"
)

// Authenticator verifies an access token and loads its administrator.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.Admin, error)
}

// Auth requires a valid access token, taken from the Authorization header or
// else the accessToken cookie, and attaches the administrator to the context.
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractToken(c)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("malformed").Inc()
				return err
			}
			if token == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthenticated
			}

			admin, err := auth.Authenticate(c.Request().Context(), token)
			metrics.TokenVerificationsTotal.WithLabelValues(metrics.Result(err)).Inc()
			if err != nil {
				return err
			}

			handler.SetCurrentAdmin(c, admin)
			return next(c)
		}
	}
}

// OptionalAuth attaches the administrator when a valid token is present and
// lets anonymous requests through. A present but invalid token is rejected.
func OptionalAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractToken(c)
			if err != nil {
				return err
			}
			if token == "" {
				return next(c)
			}

			admin, err := auth.Authenticate(c.Request().Context(), token)
			metrics.TokenVerificationsTotal.WithLabelValues(metrics.Result(err)).Inc()
			if err != nil {
				return err
			}

			handler.SetCurrentAdmin(c, admin)
			return next(c)
		}
	}
}

// extractToken prefers the bearer header over the cookie. An empty token
// with a nil error means no credential was sent.
func extractToken(c echo.Context) (string, error) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", domain.Errorf(domain.KindUnauthenticated, "invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if ck, err := c.Cookie(handler.AccessTokenCookie); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	return "", nil
}
