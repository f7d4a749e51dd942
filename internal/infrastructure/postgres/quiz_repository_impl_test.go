package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
)

func TestQuizRepository_CreateAndList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewQuizRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO quiz_pools").
		WithArgs(int64(4), "Go basics", true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "create_date"}).AddRow(int64(10), now))

	q := &entity.Quiz{OwnerID: 4, Title: "Go basics", CandidateAuthRequired: true}
	require.NoError(t, repo.Create(context.Background(), q))
	assert.Equal(t, int64(10), q.ID)

	mock.ExpectQuery("SELECT .+ FROM quiz_pools\\s+WHERE user_id = \\$1").
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "quiz_title", "create_date", "candidate_auth_required"}).
			AddRow(int64(10), int64(4), "Go basics", now, true).
			AddRow(int64(9), int64(4), "SQL", now, false))

	list, err := repo.ListByOwner(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "SQL", list[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepository_CreateValueTooLong(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewQuizRepository(mock)

	mock.ExpectQuery("INSERT INTO quiz_pools").
		WithArgs(int64(4), "long", true).
		WillReturnError(&pgconn.PgError{Code: "22001"})

	err = repo.Create(context.Background(), &entity.Quiz{OwnerID: 4, Title: "long", CandidateAuthRequired: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepository_DeleteOwned(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewQuizRepository(mock)

	mock.ExpectExec("DELETE FROM quiz_pools").
		WithArgs(int64(10), int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.DeleteOwned(context.Background(), 10, 4))

	mock.ExpectExec("DELETE FROM quiz_pools").
		WithArgs(int64(10), int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	err = repo.DeleteOwned(context.Background(), 10, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Quiz not found or you are not authorized to delete it", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepository_QuestionsAndResults(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewQuizRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO quiz_questions").
		WithArgs(int64(10), "2+2?", "3", "4", "5", "22", "B").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	question := &entity.Question{QuizID: 10, Text: "2+2?", AnswerA: "3", AnswerB: "4", AnswerC: "5", AnswerD: "22", CorrectAnswer: "B"}
	require.NoError(t, repo.AddQuestion(context.Background(), question))
	assert.Equal(t, int64(1), question.ID)

	mock.ExpectQuery("FROM quiz_questions").
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "quiz_id", "question_text", "answer_a", "answer_b", "answer_c", "answer_d", "correct_answer"}).
			AddRow(int64(1), int64(10), "2+2?", "3", "4", "5", "22", "B"))
	questions, err := repo.ListQuestions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "B", questions[0].CorrectAnswer)

	mock.ExpectQuery("INSERT INTO quiz_results").
		WithArgs(int64(10), "Bob", "APP-1", 1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "completion_date"}).AddRow(int64(3), now))
	res := &entity.Result{QuizID: 10, CandidateName: "Bob", CandidateAppID: "APP-1", Score: 1}
	require.NoError(t, repo.AddResult(context.Background(), res))
	assert.Equal(t, now, res.CompletionDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_GetOrCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewProfileRepository(mock)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("FROM user_profiles").
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "firstname", "lastname", "phone", "date_of_birth", "bio", "avatar_url", "created_at", "updated_at"}).
			AddRow(int64(2), int64(4), "Ada", "Lovelace", "", (*time.Time)(nil), "", "", now, now))

	p, err := repo.GetOrCreate(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Firstname)
	assert.Nil(t, p.DateOfBirth)
	assert.NoError(t, mock.ExpectationsWereMet())
}
