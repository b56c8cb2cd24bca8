package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// ReportSnapshot is the batch-loaded input of every report. Each slice is
// ordered by id. Quizzes carry their chapter and subject links and QuestionCount.
type ReportSnapshot struct {
	Users    []*models.User
	Subjects []*models.Subject
	Chapters []*models.Chapter
	Quizzes  []*models.Quiz
	Attempts []*models.Attempt
}

// ReportRepository loads the data reports are computed from. The collections
// are read with independent queries; no cross-query consistency is promised.
type ReportRepository interface {
	Snapshot(ctx context.Context, tx *gorm.DB) (*ReportSnapshot, error)
}
