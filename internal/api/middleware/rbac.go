package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/humanityclub/hco-backend/internal/api/handler"
	"github.com/humanityclub/hco-backend/internal/core/domain"
	"github.com/humanityclub/hco-backend/internal/core/service"
)

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := service.RequireRole(handler.CurrentAdmin(c), allowedRoles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
