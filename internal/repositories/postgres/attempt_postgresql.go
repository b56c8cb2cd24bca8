package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptPostgreSQL struct {
	helpers *SharedHelpers
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	if attempt.ID != 0 {
		return models.ErrAttemptImmutable
	}
	if err := a.helpers.getDB(tx).WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (a *AttemptPostgreSQL) GetLatestByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	err := a.helpers.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order("id DESC").
		First(&attempt).Error
	if err != nil {
		return nil, notFound(err, "attempt")
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	err := a.helpers.getDB(tx).WithContext(ctx).
		Preload("Quiz").
		Where("user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Order("id ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	if err := a.fillQuizCounts(ctx, tx, attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) SearchByQuizName(ctx context.Context, tx *gorm.DB, query string) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	err := a.helpers.getDB(tx).WithContext(ctx).
		Preload("Quiz").
		Preload("User").
		Joins("JOIN quizzes ON quizzes.id = attempts.quiz_id").
		Where(likeClause("quizzes.name"), likePattern(query)).
		Order("attempts.total_scored DESC").
		Order("attempts.id ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search attempts: %w", err)
	}

	if err := a.fillQuizCounts(ctx, tx, attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// fillQuizCounts sets QuestionCount on the preloaded quizzes
func (a *AttemptPostgreSQL) fillQuizCounts(ctx context.Context, tx *gorm.DB, attempts []*models.Attempt) error {
	quizzes := make([]*models.Quiz, 0, len(attempts))
	for _, attempt := range attempts {
		if attempt.Quiz != nil {
			quizzes = append(quizzes, attempt.Quiz)
		}
	}
	return a.helpers.fillQuestionCounts(ctx, tx, quizzes)
}
