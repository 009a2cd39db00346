package ports

import (
	"context"

	"github.com/humanityclub/hco-backend/internal/core/domain"
)

// LoginInput carries a login attempt. Identifier is an email or username.
// ClientKey scopes throttling and is built by the transport.
type LoginInput struct {
	Identifier string
	Password   string
	ClientKey  string
}

// RegisterInput carries a new administrator. An empty Role means the default.
type RegisterInput struct {
	Name     string
	Email    string
	Username string
	Password string
	Role     string
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*domain.Session, error)
	Logout(ctx context.Context, adminID string) error
	// Register creates an administrator on behalf of actor, which may be nil
	// for an unauthenticated caller.
	Register(ctx context.Context, input RegisterInput, actor *domain.Admin) (*domain.Admin, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, error)
	// Authenticate verifies an access credential and loads its administrator.
	Authenticate(ctx context.Context, accessToken string) (*domain.Admin, error)
	ListAdmins(ctx context.Context) ([]*domain.Admin, error)
}
