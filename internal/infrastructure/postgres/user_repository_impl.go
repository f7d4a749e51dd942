package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
	"github.com/oksasatya/rockae-api/internal/domain/repository"
)

const userColumns = `id, COALESCE(user_id, ''), username, email, password_hash,
	is_active, is_staff, is_superuser, is_verified,
	verification_token, verification_token_expires_at,
	reset_password_token, reset_password_token_expires_at,
	created_at, updated_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(
		&u.ID, &u.UserID, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.IsVerified,
		&u.VerificationToken, &u.VerificationTokenExpiresAt,
		&u.ResetPasswordToken, &u.ResetPasswordTokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts the row, then patches user_id from the generated key in the
// same transaction.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, is_active, is_staff, is_superuser, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.PasswordHash, u.IsActive, u.IsStaff, u.IsSuperuser, u.IsVerified)
	if err = row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapErr(err, "user")
	}

	u.AssignUserID()
	if _, err = tx.Exec(ctx, `UPDATE users SET user_id = $1 WHERE id = $2`, u.UserID, u.ID); err != nil {
		return mapErr(err, "user")
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *UserRepository) getBy(ctx context.Context, column string, value any) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err, "user")
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*entity.User, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	return r.getBy(ctx, "verification_token", token)
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*entity.User, error) {
	return r.getBy(ctx, "reset_password_token", token)
}

var updatable = map[string]func(u *entity.User) any{
	entity.FieldUsername:     func(u *entity.User) any { return u.Username },
	entity.FieldEmail:        func(u *entity.User) any { return u.Email },
	entity.FieldPasswordHash: func(u *entity.User) any { return u.PasswordHash },
	entity.FieldIsActive:     func(u *entity.User) any { return u.IsActive },
	entity.FieldIsStaff:      func(u *entity.User) any { return u.IsStaff },
	entity.FieldIsSuperuser:  func(u *entity.User) any { return u.IsSuperuser },
	entity.FieldIsVerified:   func(u *entity.User) any { return u.IsVerified },
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		get, ok := updatable[f]
		if !ok {
			return fmt.Errorf("user: field %q is not updatable", f)
		}
		args = append(args, get(u))
		sets = append(sets, fmt.Sprintf("%s = $%d", f, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, u.ID)

	q := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING updated_at`, strings.Join(sets, ", "), len(args))
	if err := r.db.QueryRow(ctx, q, args...).Scan(&u.UpdatedAt); err != nil {
		return mapErr(err, "user")
	}
	return nil
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET verification_token = $2, verification_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`, id, token, expiresAt)
	if err != nil {
		return mapErr(err, "user")
	}
	if res.RowsAffected() == 0 {
		return apperror.NotFound("user not found")
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_password_token = $2, reset_password_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`, id, token, expiresAt)
	if err != nil {
		return mapErr(err, "user")
	}
	if res.RowsAffected() == 0 {
		return apperror.NotFound("user not found")
	}
	return nil
}

func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET is_verified = TRUE, verification_token = NULL, verification_token_expires_at = NULL, updated_at = NOW()
		WHERE verification_token = $1 AND verification_token_expires_at >= $2
		RETURNING `+userColumns, token, now)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err, "verification token")
	}
	return u, nil
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $2, reset_password_token = NULL, reset_password_token_expires_at = NULL, updated_at = NOW()
		WHERE reset_password_token = $1 AND reset_password_token_expires_at >= $3
		RETURNING `+userColumns, token, passwordHash, now)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err, "reset token")
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
