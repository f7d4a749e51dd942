package repository

import (
	"context"

	"github.com/oksasatya/rockae-api/internal/domain/entity"
)

type QuizRepository interface {
	Create(ctx context.Context, q *entity.Quiz) error
	GetByID(ctx context.Context, id int64) (*entity.Quiz, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]entity.Quiz, error)
	SearchByTitle(ctx context.Context, ownerID int64, q string, limit int) ([]entity.Quiz, error)
	// DeleteOwned removes the quiz only when ownerID owns it; NotFound otherwise.
	DeleteOwned(ctx context.Context, id, ownerID int64) error

	AddQuestion(ctx context.Context, q *entity.Question) error
	ListQuestions(ctx context.Context, quizID int64) ([]entity.Question, error)

	AddResult(ctx context.Context, r *entity.Result) error
	ListResults(ctx context.Context, quizID int64) ([]entity.Result, error)
}
