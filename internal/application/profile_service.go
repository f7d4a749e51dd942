package application

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
	"github.com/oksasatya/rockae-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// AvatarUploader stores an image and returns its public URL.
type AvatarUploader interface {
	Upload(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error)
}

// ProfileView is the account plus its profile, as returned by the API.
type ProfileView struct {
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	IsVerified  bool    `json:"is_verified"`
	Firstname   string  `json:"firstname"`
	Lastname    string  `json:"lastname"`
	Phone       string  `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
	Bio         string  `json:"bio"`
	AvatarURL   string  `json:"avatar_url"`
}

// ProfilePatch carries a partial update; nil fields are left alone.
type ProfilePatch struct {
	Firstname   *string
	Lastname    *string
	Phone       *string
	DateOfBirth *string
	Bio         *string
}

type ProfileService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	avatars  AvatarUploader
	logger   logrus.FieldLogger
}

// NewProfileService builds the service; avatars may be nil when no bucket is configured.
func NewProfileService(users repository.UserRepository, profiles repository.ProfileRepository, avatars AvatarUploader, logger logrus.FieldLogger) *ProfileService {
	return &ProfileService{users: users, profiles: profiles, avatars: avatars, logger: logger}
}

func (s *ProfileService) load(ctx context.Context, userID string) (*entity.User, *entity.Profile, error) {
	u, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.profiles.GetOrCreate(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, p, nil
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*ProfileView, error) {
	u, p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOf(u, p), nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, patch ProfilePatch) (*ProfileView, error) {
	u, p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.Firstname != nil {
		p.Firstname = clean(*patch.Firstname)
	}
	if patch.Lastname != nil {
		p.Lastname = clean(*patch.Lastname)
	}
	if patch.Phone != nil {
		p.Phone = clean(*patch.Phone)
	}
	if patch.Bio != nil {
		p.Bio = clean(*patch.Bio)
	}
	details := map[string]string{}
	checkLength(details, "firstname", p.Firstname, 100)
	checkLength(details, "lastname", p.Lastname, 100)
	checkLength(details, "phone", p.Phone, 20)
	checkLength(details, "bio", p.Bio, 2000)
	if len(details) > 0 {
		return nil, apperror.Validation("Invalid profile data", details)
	}
	if patch.DateOfBirth != nil {
		if *patch.DateOfBirth == "" {
			p.DateOfBirth = nil
		} else {
			dob, err := time.Parse(dateLayout, *patch.DateOfBirth)
			if err != nil {
				return nil, apperror.Validation("Invalid profile data", map[string]string{"date_of_birth": "Date has wrong format. Use YYYY-MM-DD."})
			}
			p.DateOfBirth = &dob
		}
	}
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return viewOf(u, p), nil
}

func (s *ProfileService) UploadAvatar(ctx context.Context, userID, filename, contentType string, r io.Reader) (*ProfileView, error) {
	if s.avatars == nil {
		return nil, apperror.Dependency("Avatar storage is not configured", nil)
	}
	u, p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.avatars.Upload(ctx, u.UserID, filename, contentType, r)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.UserID).Error("avatar upload failed")
		return nil, apperror.Dependency("Failed to upload avatar", err)
	}
	p.AvatarURL = url
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return viewOf(u, p), nil
}

func viewOf(u *entity.User, p *entity.Profile) *ProfileView {
	v := &ProfileView{
		UserID:     u.UserID,
		Username:   u.Username,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		Firstname:  p.Firstname,
		Lastname:   p.Lastname,
		Phone:      p.Phone,
		Bio:        p.Bio,
		AvatarURL:  p.AvatarURL,
	}
	if p.DateOfBirth != nil {
		d := p.DateOfBirth.Format(dateLayout)
		v.DateOfBirth = &d
	}
	return v
}
