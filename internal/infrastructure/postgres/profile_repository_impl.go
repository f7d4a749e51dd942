package postgres

import (
	"context"

	"github.com/oksasatya/rockae-api/internal/domain/entity"
	"github.com/oksasatya/rockae-api/internal/domain/repository"
)

type ProfileRepository struct {
	db DB
}

func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID int64) (*entity.Profile, error) {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO user_profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return nil, mapErr(err, "profile")
	}

	p := &entity.Profile{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, firstname, lastname, phone, date_of_birth, bio, avatar_url, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &p.Firstname, &p.Lastname, &p.Phone, &p.DateOfBirth, &p.Bio,
		&p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "profile")
	}
	return p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	err := r.db.QueryRow(ctx, `
		UPDATE user_profiles
		SET firstname = $2, lastname = $3, phone = $4, date_of_birth = $5, bio = $6, avatar_url = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Firstname, p.Lastname, p.Phone, p.DateOfBirth, p.Bio, p.AvatarURL).Scan(&p.UpdatedAt)
	return mapErr(err, "profile")
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
