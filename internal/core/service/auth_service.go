package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/humanityclub/hco-backend/internal/core/domain"
	"github.com/humanityclub/hco-backend/internal/core/ports"
)

// AuthOptions tunes AuthService. Zero values fall back to defaults.
type AuthOptions struct {
	BcryptCost       int
	OpenRegistration bool
	Throttle         ports.LoginThrottle
	Logger           zerolog.Logger
}

// AuthService is the session authority: it verifies credentials, mints
// credential pairs, and owns the stored refresh credential of every admin.
type AuthService struct {
	repo     ports.AdminRepository
	tokens   *TokenManager
	throttle ports.LoginThrottle
	cost     int
	open     bool
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAuthService(repo ports.AdminRepository, tokens *TokenManager, opts AuthOptions) *AuthService {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		throttle: opts.Throttle,
		cost:     cost,
		open:     opts.OpenRegistration,
		logger:   opts.Logger,
		now:      time.Now,
	}
}

// Login verifies identifier and password and starts a new session, replacing
// any refresh credential stored for the admin.
func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (*domain.Session, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" || input.Password == "" {
		return nil, domain.Errorf(domain.KindInvalidInput, "identifier and password are required")
	}

	if !s.allowed(ctx, input.ClientKey) {
		return nil, domain.ErrTooManyAttempts
	}

	admin, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.loginFailed(ctx, input.ClientKey, identifier)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)) != nil {
		s.loginFailed(ctx, input.ClientKey, identifier)
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.issue(admin)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRefreshToken(ctx, admin.ID, session.RefreshToken); err != nil {
		return nil, err
	}

	if s.throttle != nil && input.ClientKey != "" {
		if err := s.throttle.Reset(ctx, input.ClientKey); err != nil {
			s.logger.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	s.logger.Info().Str("admin_id", admin.ID).Str("role", string(admin.Role)).Msg("admin logged in")
	return session, nil
}

// Logout revokes the stored refresh credential. Access credentials remain
// valid until they expire, so repeating Logout is a no-op.
func (s *AuthService) Logout(ctx context.Context, adminID string) error {
	if adminID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.repo.ClearRefreshToken(ctx, adminID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthenticated
		}
		return err
	}
	s.logger.Info().Str("admin_id", adminID).Msg("admin logged out")
	return nil
}

// Register creates an administrator. Assigning any role other than the
// default needs a superadmin actor; with open registration disabled every
// registration does.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput, actor *domain.Admin) (*domain.Admin, error) {
	name := strings.TrimSpace(input.Name)
	email := domain.NormalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	switch {
	case name == "" || email == "" || username == "" || input.Password == "":
		return nil, domain.Errorf(domain.KindInvalidInput, "name, email, username and password are required")
	case !strings.Contains(email, "@"):
		return nil, domain.Errorf(domain.KindInvalidInput, "email must be a valid email")
	case utf8.RuneCountInString(username) < domain.MinUsernameLength:
		return nil, domain.Errorf(domain.KindInvalidInput, "username must be at least %d characters", domain.MinUsernameLength)
	case strings.Contains(username, "@"):
		// Login matches an identifier against both fields, so a username
		// must never be mistakable for an email.
		return nil, domain.Errorf(domain.KindInvalidInput, "username must not contain @")
	}
	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}

	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, domain.Errorf(domain.KindInvalidInput, "role must be one of: admin superadmin moderator")
	}

	if err := s.authorizeRegistration(actor, role); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Errorf(domain.KindConflict, "admin already exists with this email or username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Admin{
		Name:         name,
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("admin_id", created.ID).Str("role", string(role)).Msg("admin registered")
	return created.Public(), nil
}

func (s *AuthService) authorizeRegistration(actor *domain.Admin, role domain.Role) error {
	if s.open && role == domain.DefaultRole {
		return nil
	}
	err := RequireRole(actor, domain.RoleSuperAdmin)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUnauthenticated):
		return domain.Errorf(domain.KindUnauthenticated, "registration requires an authenticated superadmin")
	default:
		return domain.Errorf(domain.KindForbidden, "only a superadmin may register administrators with this role")
	}
}

func checkPassword(password string) error {
	switch {
	case len(password) < domain.MinPasswordLength:
		return domain.Errorf(domain.KindInvalidInput, "password must be at least %d characters", domain.MinPasswordLength)
	case len(password) > domain.MaxPasswordBytes:
		return domain.Errorf(domain.KindInvalidInput, "password must be at most %d bytes", domain.MaxPasswordBytes)
	}
	return nil
}

// Refresh exchanges a live refresh credential for a new pair. The stored
// value is swapped atomically, so a credential can be exchanged only once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	admin, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	session, err := s.issue(admin)
	if err != nil {
		return nil, err
	}
	swapped, err := s.repo.RotateRefreshToken(ctx, admin.ID, refreshToken, session.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, domain.Errorf(domain.KindUnauthenticated, "refresh token has been revoked")
	}

	return session, nil
}

// Authenticate verifies an access credential and loads its admin without
// credential fields.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.Admin, error) {
	if accessToken == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}

	admin, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Errorf(domain.KindUnauthenticated, "admin not found for token")
		}
		return nil, err
	}

	return admin.Public(), nil
}

// ChangePassword stores a new hash and ends the admin's session.
func (s *AuthService) ChangePassword(ctx context.Context, adminID, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, adminID, string(hash)); err != nil {
		return err
	}
	s.logger.Info().Str("admin_id", adminID).Msg("admin password changed")
	return nil
}

// ListAdmins returns every administrator without credential fields.
func (s *AuthService) ListAdmins(ctx context.Context) ([]*domain.Admin, error) {
	return s.repo.List(ctx)
}

// RequireRole passes when admin is present and its role matches one of
// roles, compared case-insensitively.
func RequireRole(admin *domain.Admin, roles ...domain.Role) error {
	if admin == nil {
		return domain.ErrUnauthenticated
	}
	for _, r := range roles {
		if strings.EqualFold(string(admin.Role), string(r)) {
			return nil
		}
	}
	return domain.ErrForbidden
}

func (s *AuthService) issue(admin *domain.Admin) (*domain.Session, error) {
	access, accessExp, err := s.tokens.IssueAccess(admin)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(admin)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		Admin:            admin.Public(),
	}, nil
}

func (s *AuthService) allowed(ctx context.Context, key string) bool {
	if s.throttle == nil || key == "" {
		return true
	}
	ok, err := s.throttle.Allowed(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login throttle unavailable, allowing attempt")
		return true
	}
	return ok
}

func (s *AuthService) loginFailed(ctx context.Context, key, identifier string) {
	s.logger.Warn().Str("identifier", identifier).Msg("login failed")
	if s.throttle == nil || key == "" {
		return
	}
	if err := s.throttle.RecordFailure(ctx, key); err != nil {
		s.logger.Warn().Err(err).Msg("login throttle record failed")
	}
}
