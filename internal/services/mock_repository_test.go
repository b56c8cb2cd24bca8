package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

// MockRepository is an in-memory repositories.Repository for service tests
type MockRepository struct {
	mu sync.Mutex

	users     []*models.User
	subjects  []*models.Subject
	chapters  []*models.Chapter
	quizzes   []*models.Quiz
	questions []*models.Question
	attempts  []*models.Attempt

	nextID uint

	// failAttemptCreate makes every attempt insert fail
	failAttemptCreate error
	snapshotCalls     int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) Subject() repositories.SubjectRepository   { return mockSubjects{m} }
func (m *MockRepository) Chapter() repositories.ChapterRepository   { return mockChapters{m} }
func (m *MockRepository) Quiz() repositories.QuizRepository         { return mockQuizzes{m} }
func (m *MockRepository) Question() repositories.QuestionRepository { return mockQuestions{m} }
func (m *MockRepository) Attempt() repositories.AttemptRepository   { return mockAttempts{m} }
func (m *MockRepository) User() repositories.UserRepository         { return mockUsers{m} }
func (m *MockRepository) Report() repositories.ReportRepository     { return mockReports{m} }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

func (m *MockRepository) id() uint {
	m.nextID++
	return m.nextID
}

// ===== FIXTURE HELPERS =====

func (m *MockRepository) addUser(username string, admin bool) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: m.id(), Username: username, Email: username + "@example.com", IsAdmin: admin}
	m.users = append(m.users, u)
	return u
}

func (m *MockRepository) addSubject(name string) *models.Subject {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &models.Subject{ID: m.id(), Name: name}
	m.subjects = append(m.subjects, s)
	return s
}

func (m *MockRepository) addChapter(name string, subject *models.Subject) *models.Chapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &models.Chapter{ID: m.id(), Name: name, SubjectID: subject.ID, Subject: subject}
	m.chapters = append(m.chapters, c)
	return c
}

func (m *MockRepository) addQuiz(name string, chapter *models.Chapter, scheduledAt *time.Time) *models.Quiz {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := &models.Quiz{ID: m.id(), Name: name, ChapterID: chapter.ID, Chapter: chapter, ScheduledAt: scheduledAt, DurationMinutes: 10}
	m.quizzes = append(m.quizzes, q)
	return q
}

func (m *MockRepository) addQuestion(quiz *models.Quiz, correct int) *models.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := &models.Question{
		ID: m.id(), QuizID: quiz.ID, Statement: "Question",
		Option1: "A", Option2: "B", Option3: "C", Option4: "D",
		CorrectOption: correct,
	}
	m.questions = append(m.questions, q)
	quiz.QuestionCount++
	return q
}

func (m *MockRepository) addAttempt(user *models.User, quiz *models.Quiz, score int, at time.Time) *models.Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &models.Attempt{ID: m.id(), UserID: user.ID, QuizID: quiz.ID, TotalScored: score, Timestamp: at}
	m.attempts = append(m.attempts, a)
	return a
}

func (m *MockRepository) attemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}

func (m *MockRepository) quizByID(id uint) *models.Quiz {
	for _, q := range m.quizzes {
		if q.ID == id {
			return q
		}
	}
	return nil
}

func contains(s, query string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(query)))
}

// ===== CATALOG =====

type mockSubjects struct{ m *MockRepository }

func (r mockSubjects) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	subject.ID = r.m.id()
	r.m.subjects = append(r.m.subjects, subject)
	return nil
}

func (r mockSubjects) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r mockSubjects) List(ctx context.Context, tx *gorm.DB) ([]*models.Subject, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]*models.Subject(nil), r.m.subjects...), nil
}

func (r mockSubjects) SearchByName(ctx context.Context, tx *gorm.DB, query string) ([]*models.Subject, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Subject
	for _, s := range r.m.subjects {
		if contains(s.Name, query) {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockChapters struct{ m *MockRepository }

func (r mockChapters) Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	chapter.ID = r.m.id()
	r.m.chapters = append(r.m.chapters, chapter)
	return nil
}

func (r mockChapters) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.chapters {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r mockChapters) List(ctx context.Context, tx *gorm.DB, filters repositories.ChapterFilters) ([]*models.Chapter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Chapter
	for _, c := range r.m.chapters {
		if filters.SubjectID == nil || c.SubjectID == *filters.SubjectID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockQuizzes struct{ m *MockRepository }

func (r mockQuizzes) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	quiz.ID = r.m.id()
	r.m.quizzes = append(r.m.quizzes, quiz)
	return nil
}

func (r mockQuizzes) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if q := r.m.quizByID(id); q != nil {
		return q, nil
	}
	return nil, repositories.ErrNotFound
}

func (r mockQuizzes) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Quiz
	for _, q := range r.m.quizzes {
		switch {
		case filters.ChapterID != nil:
			if q.ChapterID != *filters.ChapterID {
				continue
			}
		case filters.SubjectID != nil:
			if q.Chapter == nil || q.Chapter.SubjectID != *filters.SubjectID {
				continue
			}
		}
		out = append(out, q)
	}
	return out, nil
}

func (r mockQuizzes) SearchByName(ctx context.Context, tx *gorm.DB, query string) ([]*models.Quiz, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Quiz
	for _, q := range r.m.quizzes {
		if contains(q.Name, query) {
			out = append(out, q)
		}
	}
	return out, nil
}

type mockQuestions struct{ m *MockRepository }

func (r mockQuestions) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	question.ID = r.m.id()
	r.m.questions = append(r.m.questions, question)
	return nil
}

func (r mockQuestions) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Question
	for _, q := range r.m.questions {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	return out, nil
}

// ===== ATTEMPTS =====

type mockAttempts struct{ m *MockRepository }

func (r mockAttempts) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failAttemptCreate != nil {
		return r.m.failAttemptCreate
	}
	if attempt.ID != 0 {
		return errors.New("attempt already recorded")
	}
	attempt.ID = r.m.id()
	r.m.attempts = append(r.m.attempts, attempt)
	return nil
}

func (r mockAttempts) GetLatestByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) (*models.Attempt, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var latest *models.Attempt
	for _, a := range r.m.attempts {
		if a.UserID != userID || a.QuizID != quizID {
			continue
		}
		if latest == nil || !a.Timestamp.Before(latest.Timestamp) {
			latest = a
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	return latest, nil
}

func (r mockAttempts) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Attempt, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Attempt
	for _, a := range r.m.attempts {
		if a.UserID == userID {
			withQuiz := *a
			withQuiz.Quiz = r.m.quizByID(a.QuizID)
			out = append(out, &withQuiz)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r mockAttempts) SearchByQuizName(ctx context.Context, tx *gorm.DB, query string) ([]*models.Attempt, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Attempt
	for _, a := range r.m.attempts {
		quiz := r.m.quizByID(a.QuizID)
		if quiz != nil && contains(quiz.Name, query) {
			withQuiz := *a
			withQuiz.Quiz = quiz
			out = append(out, &withQuiz)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalScored > out[j].TotalScored })
	return out, nil
}

// ===== USERS =====

type mockUsers struct{ m *MockRepository }

func (r mockUsers) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return errors.New("duplicate user")
		}
	}
	user.ID = r.m.id()
	r.m.users = append(r.m.users, user)
	return nil
}

func (r mockUsers) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r mockUsers) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r mockUsers) ExistsByUsernameOrEmail(ctx context.Context, tx *gorm.DB, username, email string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ===== REPORTS =====

type mockReports struct{ m *MockRepository }

func (r mockReports) Snapshot(ctx context.Context, tx *gorm.DB) (*repositories.ReportSnapshot, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.snapshotCalls++
	return &repositories.ReportSnapshot{
		Users:    append([]*models.User(nil), r.m.users...),
		Subjects: append([]*models.Subject(nil), r.m.subjects...),
		Chapters: append([]*models.Chapter(nil), r.m.chapters...),
		Quizzes:  append([]*models.Quiz(nil), r.m.quizzes...),
		Attempts: append([]*models.Attempt(nil), r.m.attempts...),
	}, nil
}
