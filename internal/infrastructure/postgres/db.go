package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
)

// DB is the subset of *pgxpool.Pool the repositories use. pgxmock pools
// satisfy it too.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	uniqueViolation = "23505"
	stringTooLong   = "22001"
)

var conflictMessages = map[string]string{
	"users_email_key":    "user with this email already exists.",
	"users_username_key": "A user with that username already exists.",
}

// mapErr turns driver errors into apperror kinds; other errors are wrapped
// with the entity name and surface as internal failures.
func mapErr(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound(entity + " not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			msg, ok := conflictMessages[pgErr.ConstraintName]
			if !ok {
				msg = entity + " already exists"
			}
			return apperror.Conflict(msg, err)
		case stringTooLong:
			return apperror.Validation(entity+" value is too long", nil)
		}
	}
	return fmt.Errorf("%s: %w", entity, err)
}
