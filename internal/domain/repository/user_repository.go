package repository

import (
	"context"
	"time"

	"github.com/oksasatya/rockae-api/internal/domain/entity"
)

// UserRepository is the persistence boundary for accounts.
// Lookups return apperror NotFound; uniqueness violations return Conflict.
type UserRepository interface {
	// Create inserts u and assigns ID, UserID and timestamps in one transaction.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUserID(ctx context.Context, userID string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*entity.User, error)
	GetByResetToken(ctx context.Context, token string) (*entity.User, error)
	// Update writes only the named entity.Field* columns.
	Update(ctx context.Context, u *entity.User, fields ...string) error

	// SetVerificationToken overwrites the user's verification pair.
	SetVerificationToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	// SetResetToken overwrites the user's reset pair.
	SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error

	// ConsumeVerificationToken marks the owner verified and clears the pair
	// in a single statement, provided the token matches and has not expired
	// at now. It returns NotFound when nothing was consumed.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	// ConsumeResetToken replaces the password hash and clears the reset pair
	// under the same conditions as ConsumeVerificationToken.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*entity.User, error)
}
