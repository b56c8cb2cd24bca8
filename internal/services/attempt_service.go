package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type attemptService struct {
	repo         repositories.Repository
	cacheManager *cache.CacheManager
	publisher    events.EventPublisher
	logger       *slog.Logger

	shuffle ShuffleFunc
	now     func() time.Time
}

func NewAttemptService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger) AttemptService {
	return &attemptService{
		repo:         repo,
		cacheManager: cacheManager,
		publisher:    publisher,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, quizID uint) (*StartAttemptResponse, error) {
	quiz, questions, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	shuffled := ShuffleQuestions(questions, s.shuffle)

	response := &StartAttemptResponse{
		Quiz:      newQuizSummary(quiz),
		Questions: make([]AttemptQuestion, 0, len(shuffled)),
	}
	for _, question := range shuffled {
		response.Questions = append(response.Questions, newAttemptQuestion(question))
	}

	s.logger.Debug("Attempt started", "quiz_id", quizID, "questions", len(response.Questions))
	return response, nil
}

func (s *attemptService) Submit(ctx context.Context, req *SubmitAttemptRequest) (*SubmitAttemptResponse, error) {
	s.logger.Info("Submitting attempt", "quiz_id", req.QuizID, "user_id", req.UserID)

	_, questions, err := s.loadQuiz(ctx, req.QuizID)
	if err != nil {
		return nil, err
	}

	result := ScoreAttempt(questions, req.Answers)

	attempt := &models.Attempt{
		UserID:      req.UserID,
		QuizID:      req.QuizID,
		TotalScored: result.Score,
		Timestamp:   s.now(),
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Attempt().Create(ctx, nil, attempt)
	})
	if err != nil {
		s.logger.Error("Failed to record attempt", "quiz_id", req.QuizID, "user_id", req.UserID, "error", err)
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	s.afterSubmit(ctx, attempt, result)

	s.logger.Info("Attempt recorded",
		"attempt_id", attempt.ID,
		"quiz_id", attempt.QuizID,
		"user_id", attempt.UserID,
		"score", result.Score,
		"total_questions", result.TotalQuestions)

	return &SubmitAttemptResponse{
		AttemptID:      attempt.ID,
		QuizID:         attempt.QuizID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		SubmittedAt:    attempt.Timestamp,
	}, nil
}

func (s *attemptService) GetResult(ctx context.Context, userID, quizID uint) (*AttemptResultResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	attempt, err := s.repo.Attempt().GetLatestByUserAndQuiz(ctx, nil, userID, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	return &AttemptResultResponse{
		Quiz:    newQuizSummary(quiz),
		Attempt: attempt,
	}, nil
}
