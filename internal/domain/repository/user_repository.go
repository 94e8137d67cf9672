package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jodisatria/photofolio-api/internal/domain/entity"
)

// ErrNotFound is the explicit "no such record" signal shared by all
// repository implementations.
var ErrNotFound = errors.New("not found")

// UserRepository is the credential store contract. Lookups return ErrNotFound
// when no live record matches; soft-deleted users are invisible to every
// lookup except nothing — Deactivate flips the flag, the record persists.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// GetByResetTokenHash resolves a user by the stored reset-token digest,
	// matching only while the expiry is still in the future.
	GetByResetTokenHash(ctx context.Context, hash string) (*entity.User, error)

	// UpdateProfile persists name/email changes only and returns the fresh
	// record.
	UpdateProfile(ctx context.Context, id string, name, email string) (*entity.User, error)

	// UpdatePassword stores a new hash and bumps password_changed_at,
	// clearing any outstanding reset token.
	UpdatePassword(ctx context.Context, id string, hash string, changedAt time.Time) error

	// SetResetToken and ClearResetToken are partial saves that touch only the
	// reset-token bookkeeping columns.
	SetResetToken(ctx context.Context, id string, hash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id string) error

	// Deactivate soft-deletes the user.
	Deactivate(ctx context.Context, id string) error

	// List returns all active users ordered by the given column.
	List(ctx context.Context, sortBy string) ([]*entity.User, error)
}
