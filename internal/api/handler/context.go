package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/humanityclub/hco-backend/internal/core/domain"
)

const adminContextKey = "admin"

// SetCurrentAdmin attaches the authenticated administrator to the request.
func SetCurrentAdmin(c echo.Context, admin *domain.Admin) {
	c.Set(adminContextKey, admin)
}

// CurrentAdmin returns the administrator attached by the Auth or OptionalAuth
// middleware, or nil for an anonymous request.
func CurrentAdmin(c echo.Context) *domain.Admin {
	admin, _ := c.Get(adminContextKey).(*domain.Admin)
	return admin
}

// requireAdmin fails fast when a protected handler runs without the Auth
// middleware having attached an administrator.
func requireAdmin(c echo.Context) (*domain.Admin, error) {
	admin := CurrentAdmin(c)
	if admin == nil || admin.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return admin, nil
}
