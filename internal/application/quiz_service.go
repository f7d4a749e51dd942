package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
	"github.com/oksasatya/rockae-api/internal/domain/repository"
)

const (
	searchLimit     = 20
	maxTextLen      = 255
	msgQuizNotFound = "Quiz not found"
)

// QuizIndex is the optional full-text index over quiz titles.
type QuizIndex interface {
	Index(ctx context.Context, q entity.Quiz) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, ownerID int64, q string, size int) ([]entity.Quiz, error)
}

type QuizView struct {
	ID                    int64     `json:"id"`
	Title                 string    `json:"quiz_title"`
	CreateDate            time.Time `json:"create_date"`
	CandidateAuthRequired bool      `json:"candidate_auth_required"`
}

// QuestionView omits the correct answer.
type QuestionView struct {
	ID      int64  `json:"id"`
	Text    string `json:"question_text"`
	AnswerA string `json:"answer_a"`
	AnswerB string `json:"answer_b"`
	AnswerC string `json:"answer_c"`
	AnswerD string `json:"answer_d"`
}

type QuizDetail struct {
	QuizView
	Questions []QuestionView `json:"questions"`
}

type ResultView struct {
	ID             int64     `json:"id"`
	CandidateName  string    `json:"candidate_name"`
	CandidateAppID string    `json:"candidate_app_id"`
	CompletionDate time.Time `json:"completion_date"`
	Score          int       `json:"score"`
	MaxScore       int       `json:"max_score,omitempty"`
}

// QuizInput creates a quiz. A nil CandidateAuthRequired means true.
type QuizInput struct {
	Title                 string
	CandidateAuthRequired *bool
}

type QuestionInput struct {
	Text          string
	AnswerA       string
	AnswerB       string
	AnswerC       string
	AnswerD       string
	CorrectAnswer string
}

// Submission is a candidate's answer sheet keyed by question id.
type Submission struct {
	CandidateName  string
	CandidateAppID string
	Answers        map[int64]string
}

type QuizService struct {
	users   repository.UserRepository
	quizzes repository.QuizRepository
	index   QuizIndex
	logger  logrus.FieldLogger
}

// NewQuizService builds the service; index may be nil, search then uses SQL only.
func NewQuizService(users repository.UserRepository, quizzes repository.QuizRepository, index QuizIndex, logger logrus.FieldLogger) *QuizService {
	return &QuizService{users: users, quizzes: quizzes, index: index, logger: logger}
}

func (s *QuizService) owner(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, apperror.Authentication("User not found")
		}
		return nil, err
	}
	return u, nil
}

// owned loads quizID and hides it from anyone but its owner.
func (s *QuizService) owned(ctx context.Context, userID string, quizID int64) (*entity.Quiz, error) {
	u, err := s.owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	q, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q.OwnerID != u.ID {
		return nil, apperror.NotFound(msgQuizNotFound)
	}
	return q, nil
}

func (s *QuizService) List(ctx context.Context, userID string) ([]QuizView, error) {
	u, err := s.owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := s.quizzes.ListByOwner(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return quizViews(list), nil
}

func (s *QuizService) Create(ctx context.Context, userID string, in QuizInput) (*QuizView, error) {
	title := clean(in.Title)
	details := map[string]string{}
	if title == "" {
		details["quiz_title"] = "This field may not be blank."
	}
	checkLength(details, "quiz_title", title, maxTextLen)
	if len(details) > 0 {
		return nil, apperror.Validation("Invalid quiz data", details)
	}
	authRequired := true
	if in.CandidateAuthRequired != nil {
		authRequired = *in.CandidateAuthRequired
	}
	u, err := s.owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := &entity.Quiz{OwnerID: u.ID, Title: title, CandidateAuthRequired: authRequired}
	if err := s.quizzes.Create(ctx, q); err != nil {
		return nil, err
	}
	if s.index != nil {
		if err := s.index.Index(ctx, *q); err != nil {
			s.logger.WithError(err).WithField("quiz_id", q.ID).Warn("quiz index failed")
		}
	}
	v := quizView(*q)
	return &v, nil
}

// Get returns a quiz for a candidate. Quizzes that require authentication
// are hidden from anonymous callers.
func (s *QuizService) Get(ctx context.Context, caller *Identity, quizID int64) (*QuizDetail, error) {
	q, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q.CandidateAuthRequired && caller == nil {
		return nil, apperror.Authentication("Authentication credentials were not provided.")
	}
	questions, err := s.quizzes.ListQuestions(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	d := &QuizDetail{QuizView: quizView(*q), Questions: make([]QuestionView, 0, len(questions))}
	for _, qq := range questions {
		d.Questions = append(d.Questions, QuestionView{
			ID:      qq.ID,
			Text:    qq.Text,
			AnswerA: qq.AnswerA,
			AnswerB: qq.AnswerB,
			AnswerC: qq.AnswerC,
			AnswerD: qq.AnswerD,
		})
	}
	return d, nil
}

func (s *QuizService) Delete(ctx context.Context, userID string, quizID int64) error {
	u, err := s.owner(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.quizzes.DeleteOwned(ctx, quizID, u.ID); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.Delete(ctx, quizID); err != nil {
			s.logger.WithError(err).WithField("quiz_id", quizID).Warn("quiz unindex failed")
		}
	}
	return nil
}

func (s *QuizService) AddQuestion(ctx context.Context, userID string, quizID int64, in QuestionInput) (*entity.Question, error) {
	q := &entity.Question{
		Text:          clean(in.Text),
		AnswerA:       clean(in.AnswerA),
		AnswerB:       clean(in.AnswerB),
		AnswerC:       clean(in.AnswerC),
		AnswerD:       clean(in.AnswerD),
		CorrectAnswer: strings.ToUpper(strings.TrimSpace(in.CorrectAnswer)),
	}
	details := map[string]string{}
	for field, v := range map[string]string{
		"question_text": q.Text, "answer_a": q.AnswerA, "answer_b": q.AnswerB,
		"answer_c": q.AnswerC, "answer_d": q.AnswerD,
	} {
		if v == "" {
			details[field] = "This field may not be blank."
		} else if field != "question_text" {
			checkLength(details, field, v, maxTextLen)
		}
	}
	switch q.CorrectAnswer {
	case "A", "B", "C", "D":
	default:
		details["correct_answer"] = "Must be one of A, B, C, D."
	}
	if len(details) > 0 {
		return nil, apperror.Validation("Invalid question data", details)
	}

	quiz, err := s.owned(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	q.QuizID = quiz.ID
	if err := s.quizzes.AddQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Submit scores an answer sheet on the server: one point per correct answer.
// An authenticated caller's username and user id fill blank candidate fields.
func (s *QuizService) Submit(ctx context.Context, caller *Identity, quizID int64, sub Submission) (*ResultView, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CandidateAuthRequired && caller == nil {
		return nil, apperror.Authentication("Authentication credentials were not provided.")
	}

	res := &entity.Result{
		QuizID:         quiz.ID,
		CandidateName:  clean(sub.CandidateName),
		CandidateAppID: clean(sub.CandidateAppID),
	}
	if caller != nil {
		if res.CandidateAppID == "" {
			res.CandidateAppID = caller.UserID
		}
		if res.CandidateName == "" {
			if u, err := s.users.GetByUserID(ctx, caller.UserID); err == nil {
				res.CandidateName = u.Username
			}
		}
	}
	details := map[string]string{}
	if res.CandidateName == "" {
		details["candidate_name"] = "This field is required."
	}
	checkLength(details, "candidate_name", res.CandidateName, maxTextLen)
	checkLength(details, "candidate_app_id", res.CandidateAppID, maxTextLen)
	if len(details) > 0 {
		return nil, apperror.Validation("Invalid submission", details)
	}

	questions, err := s.quizzes.ListQuestions(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		if choice, ok := sub.Answers[questions[i].ID]; ok && questions[i].Checks(choice) {
			res.Score++
		}
	}
	if err := s.quizzes.AddResult(ctx, res); err != nil {
		return nil, err
	}
	v := resultView(*res)
	v.MaxScore = len(questions)
	return &v, nil
}

func (s *QuizService) Results(ctx context.Context, userID string, quizID int64) ([]ResultView, error) {
	quiz, err := s.owned(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	list, err := s.quizzes.ListResults(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	out := make([]ResultView, 0, len(list))
	for _, r := range list {
		out = append(out, resultView(r))
	}
	return out, nil
}

// Search matches the caller's quiz titles, through the index when one is
// configured and falling back to SQL when it is absent or failing.
func (s *QuizService) Search(ctx context.Context, userID, q string) ([]QuizView, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("Invalid search", map[string]string{"q": "This field is required."})
	}
	u, err := s.owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.index != nil {
		list, err := s.index.Search(ctx, u.ID, q, searchLimit)
		if err == nil {
			return quizViews(list), nil
		}
		s.logger.WithError(err).Warn("quiz index search failed, falling back to sql")
	}
	list, err := s.quizzes.SearchByTitle(ctx, u.ID, q, searchLimit)
	if err != nil {
		return nil, err
	}
	return quizViews(list), nil
}

func quizView(q entity.Quiz) QuizView {
	return QuizView{ID: q.ID, Title: q.Title, CreateDate: q.CreateDate, CandidateAuthRequired: q.CandidateAuthRequired}
}

func quizViews(list []entity.Quiz) []QuizView {
	out := make([]QuizView, 0, len(list))
	for _, q := range list {
		out = append(out, quizView(q))
	}
	return out
}

func resultView(r entity.Result) ResultView {
	return ResultView{
		ID:             r.ID,
		CandidateName:  r.CandidateName,
		CandidateAppID: r.CandidateAppID,
		CompletionDate: r.CompletionDate,
		Score:          r.Score,
	}
}
