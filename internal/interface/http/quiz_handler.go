package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/internal/application"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
	"github.com/oksasatya/rockae-api/internal/interface/middleware"
	"github.com/oksasatya/rockae-api/pkg/response"
)

const msgQuizNotFound = "Quiz not found"

type QuizHandler struct {
	Quizzes *application.QuizService
	Logger  logrus.FieldLogger
}

func NewQuizHandler(quizzes *application.QuizService, logger logrus.FieldLogger) *QuizHandler {
	return &QuizHandler{Quizzes: quizzes, Logger: logger}
}

type createQuizRequest struct {
	Title                 string `json:"quiz_title" binding:"required,max=255"`
	CandidateAuthRequired *bool  `json:"candidate_auth_required"`
}

type addQuestionRequest struct {
	Text          string `json:"question_text" binding:"required"`
	AnswerA       string `json:"answer_a" binding:"required,max=255"`
	AnswerB       string `json:"answer_b" binding:"required,max=255"`
	AnswerC       string `json:"answer_c" binding:"required,max=255"`
	AnswerD       string `json:"answer_d" binding:"required,max=255"`
	CorrectAnswer string `json:"correct_answer" binding:"required,answer_choice"`
}

type answerRequest struct {
	QuestionID int64  `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required,answer_choice"`
}

type submitRequest struct {
	CandidateName  string          `json:"candidate_name" binding:"max=255"`
	CandidateAppID string          `json:"candidate_app_id" binding:"max=255"`
	Answers        []answerRequest `json:"answers" binding:"dive"`
}

// questionResponse is what the quiz owner sees, correct answer included.
type questionResponse struct {
	ID            int64  `json:"id"`
	QuizID        int64  `json:"quiz_id"`
	Text          string `json:"question_text"`
	AnswerA       string `json:"answer_a"`
	AnswerB       string `json:"answer_b"`
	AnswerC       string `json:"answer_c"`
	AnswerD       string `json:"answer_d"`
	CorrectAnswer string `json:"correct_answer"`
}

func toQuestionResponse(q *entity.Question) questionResponse {
	return questionResponse{
		ID:            q.ID,
		QuizID:        q.QuizID,
		Text:          q.Text,
		AnswerA:       q.AnswerA,
		AnswerB:       q.AnswerB,
		AnswerC:       q.AnswerC,
		AnswerD:       q.AnswerD,
		CorrectAnswer: q.CorrectAnswer,
	}
}

// List GET /api/quiz
func (h *QuizHandler) List(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Quizzes.List(c.Request.Context(), id.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.List(list))
}

// Create POST /api/quiz
func (h *QuizHandler) Create(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req createQuizRequest
	if !bindJSON(c, &req, "Invalid quiz data") {
		return
	}
	q, err := h.Quizzes.Create(c.Request.Context(), id.UserID, application.QuizInput{
		Title:                 req.Title,
		CandidateAuthRequired: req.CandidateAuthRequired,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// Search GET /api/quiz/search?q=
func (h *QuizHandler) Search(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Quizzes.Search(c.Request.Context(), id.UserID, c.Query("q"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.List(list))
}

// Get GET /api/quiz/:id, open to candidates.
func (h *QuizHandler) Get(c *gin.Context) {
	quizID, ok := paramID(c, "id", msgQuizNotFound)
	if !ok {
		return
	}
	d, err := h.Quizzes.Get(c.Request.Context(), middleware.Caller(c), quizID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Delete DELETE /api/quiz/:id
func (h *QuizHandler) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	quizID, ok := paramID(c, "id", msgQuizNotFound)
	if !ok {
		return
	}
	if err := h.Quizzes.Delete(c.Request.Context(), id.UserID, quizID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Quiz deleted successfully"))
}

// AddQuestion POST /api/quiz/:id/question
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	quizID, ok := paramID(c, "id", msgQuizNotFound)
	if !ok {
		return
	}
	var req addQuestionRequest
	if !bindJSON(c, &req, "Invalid question data") {
		return
	}
	q, err := h.Quizzes.AddQuestion(c.Request.Context(), id.UserID, quizID, application.QuestionInput{
		Text:          req.Text,
		AnswerA:       req.AnswerA,
		AnswerB:       req.AnswerB,
		AnswerC:       req.AnswerC,
		AnswerD:       req.AnswerD,
		CorrectAnswer: req.CorrectAnswer,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toQuestionResponse(q))
}

// Submit POST /api/quiz/:id/submit scores the answers on the server.
func (h *QuizHandler) Submit(c *gin.Context) {
	quizID, ok := paramID(c, "id", msgQuizNotFound)
	if !ok {
		return
	}
	var req submitRequest
	if !bindJSON(c, &req, "Invalid submission") {
		return
	}
	answers := make(map[int64]string, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.QuestionID] = a.Answer
	}
	res, err := h.Quizzes.Submit(c.Request.Context(), middleware.Caller(c), quizID, application.Submission{
		CandidateName:  req.CandidateName,
		CandidateAppID: req.CandidateAppID,
		Answers:        answers,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Results GET /api/quiz/:id/results
func (h *QuizHandler) Results(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	quizID, ok := paramID(c, "id", msgQuizNotFound)
	if !ok {
		return
	}
	list, err := h.Quizzes.Results(c.Request.Context(), id.UserID, quizID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.List(list))
}
