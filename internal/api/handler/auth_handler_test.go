package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/humanityclub/hco-backend/internal/core/domain"
	"github.com/humanityclub/hco-backend/internal/core/ports"
)

type stubAuthService struct {
	loginFn    func(ctx context.Context, input ports.LoginInput) (*domain.Session, error)
	logoutFn   func(ctx context.Context, adminID string) error
	registerFn func(ctx context.Context, input ports.RegisterInput, actor *domain.Admin) (*domain.Admin, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*domain.Session, error)
	listFn     func(ctx context.Context) ([]*domain.Admin, error)
}

func (s *stubAuthService) Login(ctx context.Context, input ports.LoginInput) (*domain.Session, error) {
	return s.loginFn(ctx, input)
}

func (s *stubAuthService) Logout(ctx context.Context, adminID string) error {
	return s.logoutFn(ctx, adminID)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput, actor *domain.Admin) (*domain.Admin, error) {
	return s.registerFn(ctx, input, actor)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) ListAdmins(ctx context.Context) ([]*domain.Admin, error) {
	return s.listFn(ctx)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.Admin, error) {
	return nil, domain.ErrUnauthenticated
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newSession() *domain.Session {
	return &domain.Session{
		AccessToken:      "access123",
		AccessExpiresAt:  time.Now().Add(time.Hour),
		RefreshToken:     "refresh123",
		RefreshExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		Admin:            &domain.Admin{ID: "a1", Username: "alice", Email: "alice@example.com", Role: domain.RoleAdmin},
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, input ports.LoginInput) (*domain.Session, error) {
			if input.Identifier != "Alice@Example.com" || input.Password != "secret" {
				t.Fatalf("unexpected args: %+v", input)
			}
			if input.ClientKey != "192.0.2.1|alice@example.com" {
				t.Fatalf("unexpected client key %q", input.ClientKey)
			}
			return newSession(), nil
		},
	}
	h := NewAuthHandler(stub, CookiePolicy{})

	req := jsonRequest(http.MethodPost, "/admin/login", `{"email":"Alice@Example.com","password":"secret"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "access123" || resp["token_type"] != "Bearer" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "refresh123") {
		t.Fatalf("refresh token must only travel as a cookie")
	}

	access := responseCookie(rec, AccessTokenCookie)
	refresh := responseCookie(rec, RefreshTokenCookie)
	if access == nil || access.Value != "access123" || refresh == nil || refresh.Value != "refresh123" {
		t.Fatalf("expected both credential cookies")
	}
	if !refresh.HttpOnly || refresh.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", refresh)
	}
}

func TestAuthHandler_Login_IdentifierPrecedence(t *testing.T) {
	e := newTestEcho()
	var got string
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, input ports.LoginInput) (*domain.Session, error) {
			got = input.Identifier
			return newSession(), nil
		},
	}
	h := NewAuthHandler(stub, CookiePolicy{})

	req := jsonRequest(http.MethodPost, "/admin/login", `{"identifier":" alice ","email":"x@example.com","password":"secret"}`)
	if err := h.Login(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != "alice" {
		t.Fatalf("expected identifier field to win, got %q", got)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, input ports.LoginInput) (*domain.Session, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, CookiePolicy{})

	for _, body := range []string{`{"password":"secret"}`, `{"username":"alice"}`, "not-json"} {
		req := jsonRequest(http.MethodPost, "/admin/login", body)
		err := h.Login(e.NewContext(req, httptest.NewRecorder()))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("body %q: expected ErrInvalidInput, got %v", body, err)
		}
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, input ports.LoginInput) (*domain.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, CookiePolicy{})

	req := jsonRequest(http.MethodPost, "/admin/login", `{"identifier":"admin@example.org","password":"wrongpass"}`)
	rec := httptest.NewRecorder()
	err := h.Login(e.NewContext(req, rec))
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie may be set on failure")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	var loggedOut string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, adminID string) error {
			loggedOut = adminID
			return nil
		},
	}
	h := NewAuthHandler(stub, CookiePolicy{Secure: true})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/admin/logout", nil), rec)
	SetCurrentAdmin(c, &domain.Admin{ID: "a1"})

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loggedOut != "a1" {
		t.Fatalf("expected logout for a1, got %q", loggedOut)
	}
	ck := responseCookie(rec, RefreshTokenCookie)
	if ck == nil || ck.MaxAge >= 0 || ck.Value != "" {
		t.Fatalf("expected refresh cookie cleared, got %+v", ck)
	}
	if !ck.Secure || ck.SameSite != http.SameSiteNoneMode {
		t.Fatalf("clearing cookie must carry the same attributes: %+v", ck)
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, CookiePolicy{})

	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/admin/logout", nil), httptest.NewRecorder())
	if err := h.Logout(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	actor := &domain.Admin{ID: "root", Role: domain.RoleSuperAdmin}
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput, got *domain.Admin) (*domain.Admin, error) {
			if input.Username != "alice" || input.Role != "moderator" || got != actor {
				t.Fatalf("unexpected args: %+v %+v", input, got)
			}
			return &domain.Admin{ID: "a1", Name: input.Name, Username: input.Username, Email: input.Email, Role: domain.RoleModerator}, nil
		},
	}
	h := NewAuthHandler(stub, CookiePolicy{})

	body := `{"name":"Alice","email":"a@example.com","username":"alice","password":"long-secret","role":"moderator"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/admin/register", body), rec)
	SetCurrentAdmin(c, actor)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	admin, ok := resp["admin"].(map[string]any)
	if !ok {
		t.Fatalf("expected admin in response")
	}
	if admin["username"] != "alice" || admin["role"] != "moderator" {
		t.Fatalf("unexpected admin payload: %+v", admin)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("register must not issue credentials")
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput, actor *domain.Admin) (*domain.Admin, error) {
			return nil, domain.Errorf(domain.KindConflict, "admin already exists with this email or username")
		},
	}
	h := NewAuthHandler(stub, CookiePolicy{})

	body := `{"name":"Bob","email":"b@example.com","username":"bobby","password":"long-secret"}`
	err := h.Register(e.NewContext(jsonRequest(http.MethodPost, "/admin/register", body), httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput, actor *domain.Admin) (*domain.Admin, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, CookiePolicy{})

	cases := []string{
		"not-json",
		`{"username":"bob"}`,
		`{"name":"Bob","email":"not-an-email","username":"bobby","password":"long-secret"}`,
		`{"name":"Bob","email":"b@example.com","username":"bobby","password":"long-secret","role":"owner"}`,
	}
	for _, body := range cases {
		err := h.Register(e.NewContext(jsonRequest(http.MethodPost, "/admin/register", body), httptest.NewRecorder()))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("body %q: expected ErrInvalidInput, got %v", body, err)
		}
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (*domain.Session, error) {
			if refreshToken != "old-refresh" {
				return nil, domain.ErrUnauthenticated
			}
			return newSession(), nil
		},
	}
	h := NewAuthHandler(stub, CookiePolicy{})

	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "old-refresh"})
	rec := httptest.NewRecorder()
	if err := h.Refresh(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ck := responseCookie(rec, RefreshTokenCookie); ck == nil || ck.Value != "refresh123" {
		t.Fatalf("expected rotated refresh cookie, got %+v", ck)
	}

	missing := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	if err := h.Refresh(e.NewContext(missing, httptest.NewRecorder())); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated without cookie, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, CookiePolicy{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin/me", nil), rec)
	SetCurrentAdmin(c, &domain.Admin{ID: "a1", Username: "alice", Role: domain.RoleAdmin})

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"username":"alice"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_List(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		listFn: func(context.Context) ([]*domain.Admin, error) {
			return []*domain.Admin{{ID: "a1", Username: "alice"}, {ID: "a2", Username: "bobby"}}, nil
		},
	}
	h := NewAuthHandler(stub, CookiePolicy{})

	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(httptest.NewRequest(http.MethodGet, "/admin", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"count":2`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
