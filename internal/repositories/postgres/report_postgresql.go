package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const snapshotConcurrency = 5

type ReportPostgreSQL struct {
	helpers *SharedHelpers
}

func NewReportPostgreSQL(db *gorm.DB) repositories.ReportRepository {
	return &ReportPostgreSQL{
		helpers: NewSharedHelpers(db),
	}
}

// snapshotLimit loads collections in parallel on a pool and one at a time
// inside a transaction, which owns a single connection.
func snapshotLimit(db *gorm.DB) int {
	if _, ok := db.Statement.ConnPool.(gorm.TxCommitter); ok {
		return 1
	}
	return snapshotConcurrency
}

func (r *ReportPostgreSQL) Snapshot(ctx context.Context, tx *gorm.DB) (*repositories.ReportSnapshot, error) {
	snapshot := &repositories.ReportSnapshot{}
	var questionCounts map[uint]int

	db := r.helpers.getDB(tx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotLimit(db))

	g.Go(func() error {
		if err := db.WithContext(gctx).Order("id ASC").Find(&snapshot.Users).Error; err != nil {
			return fmt.Errorf("failed to load users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := db.WithContext(gctx).Order("id ASC").Find(&snapshot.Subjects).Error; err != nil {
			return fmt.Errorf("failed to load subjects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := db.WithContext(gctx).Order("id ASC").Find(&snapshot.Chapters).Error; err != nil {
			return fmt.Errorf("failed to load chapters: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := db.WithContext(gctx).Order("id ASC").Find(&snapshot.Quizzes).Error; err != nil {
			return fmt.Errorf("failed to load quizzes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		counts, err := r.helpers.QuestionCounts(gctx, tx)
		if err != nil {
			return err
		}
		questionCounts = counts
		return nil
	})
	g.Go(func() error {
		if err := db.WithContext(gctx).Order("id ASC").Find(&snapshot.Attempts).Error; err != nil {
			return fmt.Errorf("failed to load attempts: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	linkSnapshot(snapshot, questionCounts)
	return snapshot, nil
}

// linkSnapshot wires quiz -> chapter -> subject and attempt -> quiz/user in memory
// instead of issuing a lookup per row.
func linkSnapshot(snapshot *repositories.ReportSnapshot, questionCounts map[uint]int) {
	subjects := make(map[uint]*models.Subject, len(snapshot.Subjects))
	for _, subject := range snapshot.Subjects {
		subjects[subject.ID] = subject
	}

	chapters := make(map[uint]*models.Chapter, len(snapshot.Chapters))
	for _, chapter := range snapshot.Chapters {
		chapter.Subject = subjects[chapter.SubjectID]
		chapters[chapter.ID] = chapter
	}

	quizzes := make(map[uint]*models.Quiz, len(snapshot.Quizzes))
	for _, quiz := range snapshot.Quizzes {
		quiz.Chapter = chapters[quiz.ChapterID]
		quiz.QuestionCount = questionCounts[quiz.ID]
		quizzes[quiz.ID] = quiz
	}

	users := make(map[uint]*models.User, len(snapshot.Users))
	for _, user := range snapshot.Users {
		users[user.ID] = user
	}

	for _, attempt := range snapshot.Attempts {
		attempt.Quiz = quizzes[attempt.QuizID]
		attempt.User = users[attempt.UserID]
	}
}
