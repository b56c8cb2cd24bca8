package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

// ===== HELPER FUNCTIONS =====

func (s *attemptService) loadQuiz(ctx context.Context, quizID uint) (*models.Quiz, []*models.Question, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrQuizNotFound
		}
		return nil, nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	questions, err := s.repo.Question().ListByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return quiz, questions, nil
}

// afterSubmit drops cached reports and announces the attempt. Failures are logged only.
func (s *attemptService) afterSubmit(ctx context.Context, attempt *models.Attempt, result ScoreResult) {
	if s.cacheManager != nil {
		s.cacheManager.InvalidateReports(ctx)
	}

	if s.publisher == nil {
		return
	}

	event := events.NewEvent(events.EventAttemptSubmitted, events.AttemptSubmittedData{
		AttemptID:      attempt.ID,
		UserID:         attempt.UserID,
		QuizID:         attempt.QuizID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		SubmittedAt:    attempt.Timestamp,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish attempt event", "attempt_id", attempt.ID, "error", err)
	}
}

// ===== RESPONSE BUILDERS =====

func newAttemptQuestion(question *models.Question) AttemptQuestion {
	return AttemptQuestion{
		ID:        question.ID,
		Statement: question.Statement,
		Options:   [4]string{question.Option1, question.Option2, question.Option3, question.Option4},
	}
}

func newQuizSummary(quiz *models.Quiz) QuizSummary {
	summary := QuizSummary{
		ID:              quiz.ID,
		Name:            quiz.Name,
		ChapterID:       quiz.ChapterID,
		ScheduledAt:     quiz.ScheduledAt,
		DurationMinutes: quiz.DurationMinutes,
		QuestionCount:   quiz.QuestionCount,
	}
	if quiz.Chapter != nil {
		summary.ChapterName = quiz.Chapter.Name
	}
	if subject := quiz.Subject(); subject != nil {
		summary.SubjectID = subject.ID
		summary.SubjectName = subject.Name
	}
	return summary
}

func newQuizSummaries(quizzes []*models.Quiz) []QuizSummary {
	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, newQuizSummary(quiz))
	}
	return summaries
}

// newScoreDetail flattens an attempt whose Quiz relation is loaded
func newScoreDetail(attempt *models.Attempt) ScoreDetail {
	detail := ScoreDetail{
		AttemptID: attempt.ID,
		QuizID:    attempt.QuizID,
		QuizName:  unknownLabel,
		QuizDate:  "N/A",
		Score:     attempt.TotalScored,
		Timestamp: attempt.Timestamp,
	}
	if quiz := attempt.Quiz; quiz != nil {
		detail.QuizName = quiz.Name
		detail.NumQuestions = quiz.QuestionCount
		if quiz.ScheduledAt != nil {
			detail.QuizDate = quiz.ScheduledAt.Format(dateLayout)
		}
	}
	return detail
}
