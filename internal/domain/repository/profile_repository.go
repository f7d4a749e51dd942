package repository

import (
	"context"

	"github.com/oksasatya/rockae-api/internal/domain/entity"
)

type ProfileRepository interface {
	// GetOrCreate returns the profile of userID, inserting an empty one first if needed.
	GetOrCreate(ctx context.Context, userID int64) (*entity.Profile, error)
	Update(ctx context.Context, p *entity.Profile) error
}
