package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ChapterFilters struct {
	SubjectID *uint `json:"subject_id"`
}

// QuizFilters narrows quiz listings. ChapterID takes precedence over SubjectID.
type QuizFilters struct {
	SubjectID *uint `json:"subject_id"`
	ChapterID *uint `json:"chapter_id"`
}

// ===== CATALOG =====

type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Subject, error)
	SearchByName(ctx context.Context, tx *gorm.DB, query string) ([]*models.Subject, error)
}

type ChapterRepository interface {
	Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error)
	List(ctx context.Context, tx *gorm.DB, filters ChapterFilters) ([]*models.Chapter, error)
}

type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	// GetByID loads the quiz with its chapter, subject and question count.
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	List(ctx context.Context, tx *gorm.DB, filters QuizFilters) ([]*models.Quiz, error)
	// SearchByName returns matching quizzes, latest scheduled first.
	SearchByName(ctx context.Context, tx *gorm.DB, query string) ([]*models.Quiz, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	// ListByQuiz returns the questions of a quiz ordered by id.
	ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error)
}

// ===== ATTEMPTS =====

// AttemptRepository has no update or delete path; attempts are insert-only.
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	GetLatestByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) (*models.Attempt, error)
	// ListByUser returns the user's attempts with their quiz, oldest first.
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Attempt, error)
	// SearchByQuizName returns attempts on quizzes whose name matches, best score first.
	SearchByQuizName(ctx context.Context, tx *gorm.DB, query string) ([]*models.Attempt, error)
}
