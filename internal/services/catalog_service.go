package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type catalogService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewCatalogService(repo repositories.Repository, logger *slog.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		logger: logger,
	}
}

func (s *catalogService) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	subjects, err := s.repo.Subject().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *catalogService) ListChapters(ctx context.Context, filters repositories.ChapterFilters) ([]*models.Chapter, error) {
	chapters, err := s.repo.Chapter().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}

// ListQuizzes filters by chapter when given, otherwise by subject
func (s *catalogService) ListQuizzes(ctx context.Context, filters repositories.QuizFilters) ([]QuizSummary, error) {
	quizzes, err := s.repo.Quiz().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return newQuizSummaries(quizzes), nil
}

func (s *catalogService) GetQuiz(ctx context.Context, id uint) (*QuizSummary, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	summary := newQuizSummary(quiz)
	return &summary, nil
}

// Search matches subject names, quiz names and attempts by quiz name. The
// three lookups are independent and run concurrently.
func (s *catalogService) Search(ctx context.Context, query string) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	results := &SearchResults{Query: query}

	var (
		quizzes  []*models.Quiz
		attempts []*models.Attempt
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		subjects, err := s.repo.Subject().SearchByName(gctx, nil, query)
		if err != nil {
			return fmt.Errorf("failed to search subjects: %w", err)
		}
		results.Subjects = subjects
		return nil
	})
	g.Go(func() error {
		var err error
		if quizzes, err = s.repo.Quiz().SearchByName(gctx, nil, query); err != nil {
			return fmt.Errorf("failed to search quizzes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if attempts, err = s.repo.Attempt().SearchByQuizName(gctx, nil, query); err != nil {
			return fmt.Errorf("failed to search scores: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results.Quizzes = newQuizSummaries(quizzes)
	results.Scores = make([]ScoreDetail, 0, len(attempts))
	for _, attempt := range attempts {
		results.Scores = append(results.Scores, newScoreDetail(attempt))
	}

	s.logger.Debug("Search completed",
		"query", query,
		"subjects", len(results.Subjects),
		"quizzes", len(results.Quizzes),
		"scores", len(results.Scores))

	return results, nil
}
