package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// getDB returns the transaction when one is supplied
func (h *SharedHelpers) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return h.db
}

// QuestionCounts returns the number of questions per quiz id. Quizzes with no
// questions are absent from the map.
func (h *SharedHelpers) QuestionCounts(ctx context.Context, tx *gorm.DB, quizIDs ...uint) (map[uint]int, error) {
	var rows []struct {
		QuizID uint
		Count  int
	}

	query := h.getDB(tx).WithContext(ctx).
		Model(&models.Question{}).
		Select("quiz_id, COUNT(*) AS count").
		Group("quiz_id")
	if len(quizIDs) > 0 {
		query = query.Where("quiz_id IN ?", quizIDs)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.QuizID] = row.Count
	}
	return counts, nil
}

// fillQuestionCounts sets QuestionCount on every quiz
func (h *SharedHelpers) fillQuestionCounts(ctx context.Context, tx *gorm.DB, quizzes []*models.Quiz) error {
	if len(quizzes) == 0 {
		return nil
	}

	ids := make([]uint, len(quizzes))
	for i, quiz := range quizzes {
		ids[i] = quiz.ID
	}

	counts, err := h.QuestionCounts(ctx, tx, ids...)
	if err != nil {
		return err
	}
	for _, quiz := range quizzes {
		quiz.QuestionCount = counts[quiz.ID]
	}
	return nil
}

// likeClause matches column case-insensitively against a likePattern argument
func likeClause(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}

// likePattern builds a case-insensitive substring pattern for likeClause
func likePattern(query string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
}

// notFound translates gorm's missing-row error into the repository sentinel
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", entity, repositories.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}
