package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
	"github.com/oksasatya/rockae-api/internal/domain/repository"
)

const quizColumns = `id, user_id, quiz_title, create_date, candidate_auth_required`

type QuizRepository struct {
	db DB
}

func NewQuizRepository(db DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) Create(ctx context.Context, q *entity.Quiz) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO quiz_pools (user_id, quiz_title, candidate_auth_required)
		VALUES ($1, $2, $3)
		RETURNING id, create_date
	`, q.OwnerID, q.Title, q.CandidateAuthRequired).Scan(&q.ID, &q.CreateDate)
	return mapErr(err, "quiz")
}

func (r *QuizRepository) GetByID(ctx context.Context, id int64) (*entity.Quiz, error) {
	q := &entity.Quiz{}
	err := r.db.QueryRow(ctx, `SELECT `+quizColumns+` FROM quiz_pools WHERE id = $1`, id).
		Scan(&q.ID, &q.OwnerID, &q.Title, &q.CreateDate, &q.CandidateAuthRequired)
	if err != nil {
		return nil, mapErr(err, "quiz")
	}
	return q, nil
}

func collectQuizzes(rows pgx.Rows) ([]entity.Quiz, error) {
	defer rows.Close()
	out := make([]entity.Quiz, 0)
	for rows.Next() {
		var q entity.Quiz
		if err := rows.Scan(&q.ID, &q.OwnerID, &q.Title, &q.CreateDate, &q.CandidateAuthRequired); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *QuizRepository) ListByOwner(ctx context.Context, ownerID int64) ([]entity.Quiz, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quizColumns+`
		FROM quiz_pools
		WHERE user_id = $1
		ORDER BY create_date DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, mapErr(err, "quiz")
	}
	out, err := collectQuizzes(rows)
	return out, mapErr(err, "quiz")
}

func (r *QuizRepository) SearchByTitle(ctx context.Context, ownerID int64, q string, limit int) ([]entity.Quiz, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quizColumns+`
		FROM quiz_pools
		WHERE user_id = $1 AND quiz_title ILIKE '%' || $2 || '%'
		ORDER BY create_date DESC, id DESC
		LIMIT $3
	`, ownerID, q, limit)
	if err != nil {
		return nil, mapErr(err, "quiz")
	}
	out, err := collectQuizzes(rows)
	return out, mapErr(err, "quiz")
}

func (r *QuizRepository) DeleteOwned(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM quiz_pools WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return mapErr(err, "quiz")
	}
	if res.RowsAffected() == 0 {
		return apperror.NotFound("Quiz not found or you are not authorized to delete it")
	}
	return nil
}

func (r *QuizRepository) AddQuestion(ctx context.Context, q *entity.Question) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO quiz_questions (quiz_id, question_text, answer_a, answer_b, answer_c, answer_d, correct_answer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, q.QuizID, q.Text, q.AnswerA, q.AnswerB, q.AnswerC, q.AnswerD, q.CorrectAnswer).Scan(&q.ID)
	return mapErr(err, "question")
}

func (r *QuizRepository) ListQuestions(ctx context.Context, quizID int64) ([]entity.Question, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quiz_id, question_text, answer_a, answer_b, answer_c, answer_d, correct_answer
		FROM quiz_questions
		WHERE quiz_id = $1
		ORDER BY id
	`, quizID)
	if err != nil {
		return nil, mapErr(err, "question")
	}
	defer rows.Close()

	out := make([]entity.Question, 0)
	for rows.Next() {
		var q entity.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.AnswerA, &q.AnswerB, &q.AnswerC, &q.AnswerD, &q.CorrectAnswer); err != nil {
			return nil, mapErr(err, "question")
		}
		out = append(out, q)
	}
	return out, mapErr(rows.Err(), "question")
}

func (r *QuizRepository) AddResult(ctx context.Context, res *entity.Result) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO quiz_results (quiz_id, candidate_name, candidate_app_id, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, completion_date
	`, res.QuizID, res.CandidateName, res.CandidateAppID, res.Score).Scan(&res.ID, &res.CompletionDate)
	return mapErr(err, "result")
}

func (r *QuizRepository) ListResults(ctx context.Context, quizID int64) ([]entity.Result, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quiz_id, candidate_name, candidate_app_id, completion_date, score
		FROM quiz_results
		WHERE quiz_id = $1
		ORDER BY completion_date DESC, id DESC
	`, quizID)
	if err != nil {
		return nil, mapErr(err, "result")
	}
	defer rows.Close()

	out := make([]entity.Result, 0)
	for rows.Next() {
		var res entity.Result
		if err := rows.Scan(&res.ID, &res.QuizID, &res.CandidateName, &res.CandidateAppID, &res.CompletionDate, &res.Score); err != nil {
			return nil, mapErr(err, "result")
		}
		out = append(out, res)
	}
	return out, mapErr(rows.Err(), "result")
}

var _ repository.QuizRepository = (*QuizRepository)(nil)
