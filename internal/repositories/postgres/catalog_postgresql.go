package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

// ===== SUBJECTS =====

type SubjectPostgreSQL struct {
	helpers *SharedHelpers
}

func NewSubjectPostgreSQL(db *gorm.DB) repositories.SubjectRepository {
	return &SubjectPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (s *SubjectPostgreSQL) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	if err := s.helpers.getDB(tx).WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}

func (s *SubjectPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := s.helpers.getDB(tx).WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, notFound(err, "subject")
	}
	return &subject, nil
}

func (s *SubjectPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Subject, error) {
	var subjects []*models.Subject
	if err := s.helpers.getDB(tx).WithContext(ctx).Order("id ASC").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *SubjectPostgreSQL) SearchByName(ctx context.Context, tx *gorm.DB, query string) ([]*models.Subject, error) {
	var subjects []*models.Subject
	err := s.helpers.getDB(tx).WithContext(ctx).
		Where(likeClause("name"), likePattern(query)).
		Order("id ASC").
		Find(&subjects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search subjects: %w", err)
	}
	return subjects, nil
}

// ===== CHAPTERS =====

type ChapterPostgreSQL struct {
	helpers *SharedHelpers
}

func NewChapterPostgreSQL(db *gorm.DB) repositories.ChapterRepository {
	return &ChapterPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (c *ChapterPostgreSQL) Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	if err := c.helpers.getDB(tx).WithContext(ctx).Create(chapter).Error; err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}

func (c *ChapterPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := c.helpers.getDB(tx).WithContext(ctx).Preload("Subject").First(&chapter, id).Error; err != nil {
		return nil, notFound(err, "chapter")
	}
	return &chapter, nil
}

func (c *ChapterPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ChapterFilters) ([]*models.Chapter, error) {
	query := c.helpers.getDB(tx).WithContext(ctx).Preload("Subject")
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}

	var chapters []*models.Chapter
	if err := query.Order("id ASC").Find(&chapters).Error; err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}
