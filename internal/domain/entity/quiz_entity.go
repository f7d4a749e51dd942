package entity

import (
	"strings"
	"time"
)

// Quiz is a pool of questions owned by one user.
type Quiz struct {
	ID                    int64
	OwnerID               int64
	Title                 string
	CreateDate            time.Time
	CandidateAuthRequired bool
}

type Question struct {
	ID            int64
	QuizID        int64
	Text          string
	AnswerA       string
	AnswerB       string
	AnswerC       string
	AnswerD       string
	CorrectAnswer string // A, B, C or D
}

// Checks reports whether the given choice is the correct answer.
func (q *Question) Checks(choice string) bool {
	return strings.EqualFold(strings.TrimSpace(choice), q.CorrectAnswer)
}

type Result struct {
	ID             int64
	QuizID         int64
	CandidateName  string
	CandidateAppID string
	CompletionDate time.Time
	Score          int
}
