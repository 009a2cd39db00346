package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/humanityclub/hco-backend/internal/api/metrics"
	"github.com/humanityclub/hco-backend/internal/core/domain"
	"github.com/humanityclub/hco-backend/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookiePolicy
}

func NewAuthHandler(authService ports.AuthService, cookies CookiePolicy) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=4,excludes=@"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role,omitempty" validate:"omitempty,role"`
}

// loginRequest accepts the identifier directly or under its historical
// field names.
type loginRequest struct {
	Identifier string `json:"identifier,omitempty"`
	Email      string `json:"email,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password" validate:"required"`
}

func (r loginRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Username} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type sessionResponse struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message,omitempty"`
	Admin       *domain.Admin `json:"admin"`
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

type adminResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Admin   *domain.Admin `json:"admin"`
}

type adminListResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Admins  []*domain.Admin `json:"admins"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Login authenticates an administrator and starts a session.
//
// @Summary      Admin login
// @Description  Accepts an email or username. Sets the accessToken and refreshToken cookies.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /admin/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.Errorf(domain.KindInvalidInput, "invalid payload")
	}
	identifier := req.identifier()
	if identifier == "" {
		return domain.Errorf(domain.KindInvalidInput, "email or username is required")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Identifier: identifier,
		Password:   req.Password,
		ClientKey:  c.RealIP() + "|" + strings.ToLower(identifier),
	})
	metrics.LoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	h.cookies.setSession(c, session.AccessToken, session.AccessExpiresAt, session.RefreshToken, session.RefreshExpiresAt)
	return c.JSON(http.StatusOK, newSessionResponse(session, "login successful"))
}

// Logout revokes the stored refresh token and clears both cookies.
//
// @Summary      Admin logout
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]any
// @Router       /admin/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), admin.ID); err != nil {
		return err
	}
	metrics.LogoutsTotal.Inc()

	h.cookies.clearSession(c)
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "logged out"})
}

// Register creates a new administrator. Tokens are not issued.
//
// @Summary      Register an administrator
// @Description  Roles other than admin need an authenticated superadmin. With open registration disabled every registration does.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "Administrator details"
// @Success      201   {object}  adminResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /admin/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.Errorf(domain.KindInvalidInput, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	admin, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	}, CurrentAdmin(c))
	if err != nil {
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues(string(admin.Role)).Inc()

	return c.JSON(http.StatusCreated, adminResponse{Success: true, Message: "admin registered", Admin: admin})
}

// Refresh exchanges the refreshToken cookie for a new credential pair.
//
// @Summary      Refresh the session
// @Description  Reads only the refreshToken cookie. A refresh token can be exchanged once.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]any
// @Router       /admin/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var raw string
	if ck, err := c.Cookie(RefreshTokenCookie); err == nil {
		raw = ck.Value
	}

	session, err := h.authService.Refresh(c.Request().Context(), raw)
	metrics.RefreshesTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		if raw != "" {
			h.cookies.clearSession(c)
		}
		return err
	}

	h.cookies.setSession(c, session.AccessToken, session.AccessExpiresAt, session.RefreshToken, session.RefreshExpiresAt)
	return c.JSON(http.StatusOK, newSessionResponse(session, ""))
}

// Me returns the authenticated administrator.
//
// @Summary      Current administrator
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminResponse
// @Failure      401  {object}  map[string]any
// @Router       /admin/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminResponse{Success: true, Admin: admin})
}

// List returns every administrator. Mounted behind the superadmin role check.
//
// @Summary      List administrators
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminListResponse
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /admin [get]
func (h *AuthHandler) List(c echo.Context) error {
	admins, err := h.authService.ListAdmins(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminListResponse{Success: true, Count: len(admins), Admins: admins})
}

func newSessionResponse(s *domain.Session, message string) sessionResponse {
	return sessionResponse{
		Success:     true,
		Message:     message,
		Admin:       s.Admin,
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   s.AccessExpiresAt,
	}
}
