package ports

import (
	"context"

	"github.com/humanityclub/hco-backend/internal/core/domain"
)

// AdminRepository persists administrators and their single refresh credential.
type AdminRepository interface {
	// Create inserts admin and returns the stored record. Duplicate email or
	// username yields domain.ErrConflict.
	Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
	// FindByIdentifier matches an email (case-insensitive) or a username and
	// returns the record including its password hash.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.Admin, error)
	// FindByID returns the public view, without password hash or refresh credential.
	FindByID(ctx context.Context, id string) (*domain.Admin, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	List(ctx context.Context) ([]*domain.Admin, error)

	FindRefreshToken(ctx context.Context, id string) (string, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	ClearRefreshToken(ctx context.Context, id string) error
	// RotateRefreshToken replaces current with next only if current is still
	// the stored value. It reports whether the swap happened.
	RotateRefreshToken(ctx context.Context, id, current, next string) (bool, error)
	// UpdatePassword stores a new hash and revokes the stored refresh credential.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
