package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	helpers *SharedHelpers
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	if err := q.helpers.getDB(tx).WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := q.helpers.getDB(tx).WithContext(ctx).
		Preload("Chapter.Subject").
		First(&quiz, id).Error
	if err != nil {
		return nil, notFound(err, "quiz")
	}

	if err := q.helpers.fillQuestionCounts(ctx, tx, []*models.Quiz{&quiz}); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, error) {
	query := q.helpers.getDB(tx).WithContext(ctx).Preload("Chapter.Subject")

	switch {
	case filters.ChapterID != nil:
		query = query.Where("chapter_id = ?", *filters.ChapterID)
	case filters.SubjectID != nil:
		query = query.Where("chapter_id IN (?)",
			q.helpers.getDB(tx).Model(&models.Chapter{}).Select("id").Where("subject_id = ?", *filters.SubjectID))
	}

	var quizzes []*models.Quiz
	if err := query.Order("id ASC").Find(&quizzes).Error; err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	if err := q.helpers.fillQuestionCounts(ctx, tx, quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (q *QuizPostgreSQL) SearchByName(ctx context.Context, tx *gorm.DB, query string) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	err := q.helpers.getDB(tx).WithContext(ctx).
		Preload("Chapter.Subject").
		Where(likeClause("name"), likePattern(query)).
		Order("scheduled_at IS NULL").
		Order("scheduled_at DESC").
		Order("id ASC").
		Find(&quizzes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search quizzes: %w", err)
	}

	if err := q.helpers.fillQuestionCounts(ctx, tx, quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}
