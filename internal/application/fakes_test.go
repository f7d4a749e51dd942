package application

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
	"github.com/oksasatya/rockae-api/pkg/mailer"
)

// memUsers is an in-memory UserRepository whose consume operations are
// atomic under one mutex, like the single UPDATE in PostgreSQL.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*entity.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*entity.User{}}
}

func clone(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if e.Email == u.Email {
			return apperror.Conflict("user with this email already exists.", nil)
		}
		if e.Username == u.Username {
			return apperror.Conflict("A user with that username already exists.", nil)
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.AssignUserID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = clone(u)
	return nil
}

func (m *memUsers) find(match func(*entity.User) bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.ID == id })
}

func (m *memUsers) GetByUserID(_ context.Context, userID string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.UserID == userID })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Email == email })
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Username == username })
}

func (m *memUsers) GetByVerificationToken(_ context.Context, token string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.VerificationToken != nil && *u.VerificationToken == token })
}

func (m *memUsers) GetByResetToken(_ context.Context, token string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token })
}

func (m *memUsers) Update(_ context.Context, u *entity.User, _ ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return apperror.NotFound("user not found")
	}
	m.byID[u.ID] = clone(u)
	return nil
}

func (m *memUsers) SetVerificationToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return apperror.NotFound("user not found")
	}
	u.VerificationToken, u.VerificationTokenExpiresAt = &token, &expiresAt
	return nil
}

func (m *memUsers) SetResetToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return apperror.NotFound("user not found")
	}
	u.ResetPasswordToken, u.ResetPasswordTokenExpiresAt = &token, &expiresAt
	return nil
}

func (m *memUsers) ConsumeVerificationToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.VerificationToken != nil && *u.VerificationToken == token &&
			u.VerificationTokenExpiresAt != nil && !now.After(*u.VerificationTokenExpiresAt) {
			u.IsVerified = true
			u.VerificationToken, u.VerificationTokenExpiresAt = nil, nil
			return clone(u), nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (m *memUsers) ConsumeResetToken(_ context.Context, token, hash string, now time.Time) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token &&
			u.ResetPasswordTokenExpiresAt != nil && !now.After(*u.ResetPasswordTokenExpiresAt) {
			u.PasswordHash = hash
			u.ResetPasswordToken, u.ResetPasswordTokenExpiresAt = nil, nil
			return clone(u), nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memProfiles struct {
	mu   sync.Mutex
	byID map[int64]*entity.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byID: map[int64]*entity.Profile{}}
}

func (m *memProfiles) GetOrCreate(_ context.Context, userID int64) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[userID]
	if !ok {
		p = &entity.Profile{ID: userID, UserID: userID}
		m.byID[userID] = p
	}
	c := *p
	return &c, nil
}

func (m *memProfiles) Update(_ context.Context, p *entity.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *p
	m.byID[p.UserID] = &c
	return nil
}

type memQuizzes struct {
	mu        sync.Mutex
	nextID    int64
	quizzes   map[int64]*entity.Quiz
	questions map[int64][]entity.Question
	results   map[int64][]entity.Result
}

func newMemQuizzes() *memQuizzes {
	return &memQuizzes{
		quizzes:   map[int64]*entity.Quiz{},
		questions: map[int64][]entity.Question{},
		results:   map[int64][]entity.Result{},
	}
}

func (m *memQuizzes) Create(_ context.Context, q *entity.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	q.ID = m.nextID
	q.CreateDate = time.Now().UTC()
	c := *q
	m.quizzes[q.ID] = &c
	return nil
}

func (m *memQuizzes) GetByID(_ context.Context, id int64) (*entity.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return nil, apperror.NotFound("quiz not found")
	}
	c := *q
	return &c, nil
}

func (m *memQuizzes) ListByOwner(_ context.Context, ownerID int64) ([]entity.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Quiz{}
	for _, q := range m.quizzes {
		if q.OwnerID == ownerID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memQuizzes) SearchByTitle(ctx context.Context, ownerID int64, q string, limit int) ([]entity.Quiz, error) {
	all, _ := m.ListByOwner(ctx, ownerID)
	out := []entity.Quiz{}
	for _, x := range all {
		if len(out) < limit && containsFold(x.Title, q) {
			out = append(out, x)
		}
	}
	return out, nil
}

func (m *memQuizzes) DeleteOwned(_ context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok || q.OwnerID != ownerID {
		return apperror.NotFound("Quiz not found or you are not authorized to delete it")
	}
	delete(m.quizzes, id)
	delete(m.questions, id)
	delete(m.results, id)
	return nil
}

func (m *memQuizzes) AddQuestion(_ context.Context, q *entity.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	q.ID = m.nextID
	m.questions[q.QuizID] = append(m.questions[q.QuizID], *q)
	return nil
}

func (m *memQuizzes) ListQuestions(_ context.Context, quizID int64) ([]entity.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Question{}, m.questions[quizID]...), nil
}

func (m *memQuizzes) AddResult(_ context.Context, r *entity.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	r.CompletionDate = time.Now().UTC()
	m.results[r.QuizID] = append(m.results[r.QuizID], *r)
	return nil
}

func (m *memQuizzes) ListResults(_ context.Context, quizID int64) ([]entity.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Result{}, m.results[quizID]...), nil
}

// memSessions is an in-memory SessionStore.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]Session{}}
}

func (m *memSessions) Save(_ context.Context, s Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, sid string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sid]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessions) Delete(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.ID)
	return nil
}

func (m *memSessions) DeleteAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sid, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, sid)
		}
	}
	return nil
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// mockSender records outgoing mail through testify's mock.
type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[int64]entity.Quiz
	err     error
}

func (f *fakeIndex) Index(_ context.Context, q entity.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexed == nil {
		f.indexed = map[int64]entity.Quiz{}
	}
	f.indexed[q.ID] = q
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, ownerID int64, q string, _ int) ([]entity.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []entity.Quiz{}
	for _, x := range f.indexed {
		if x.OwnerID == ownerID && containsFold(x.Title, q) {
			out = append(out, x)
		}
	}
	return out, nil
}

type fakeUploader struct {
	url string
	err error
}

func (f fakeUploader) Upload(_ context.Context, _, _, _ string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	return f.url, f.err
}

func nullLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
