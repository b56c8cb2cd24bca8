package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

const leaderboardCacheKey = "leaderboard"

type studentService struct {
	repo         repositories.Repository
	cacheManager *cache.CacheManager
	logger       *slog.Logger
	cacheTTL     time.Duration

	now func() time.Time
}

func NewStudentService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, cacheTTL time.Duration) StudentService {
	if cacheTTL <= 0 {
		cacheTTL = cache.ReportCacheConfig.TTL
	}
	return &studentService{
		repo:         repo,
		cacheManager: cacheManager,
		logger:       logger,
		cacheTTL:     cacheTTL,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// GetDashboard caches the attempt summary only. Upcoming quizzes depend on
// the clock and are recomputed on every read.
func (s *studentService) GetDashboard(ctx context.Context, userID uint) (*UserDashboard, error) {
	var summary UserSummary
	key := fmt.Sprintf("user:%d:summary", userID)

	err := s.reportCache().CacheOrExecute(ctx, key, &summary, s.cacheTTL, func() (interface{}, error) {
		return s.buildSummary(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	quizzes, err := s.repo.Quiz().List(ctx, nil, repositories.QuizFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	upcoming := UpcomingQuizzes(quizzes, summary.AttemptedQuizIDs, s.now())

	s.logger.Debug("User dashboard computed",
		"user_id", userID,
		"attempts", summary.AttemptCount,
		"upcoming", len(upcoming))

	return &UserDashboard{
		Summary:  summary,
		Upcoming: newQuizSummaries(upcoming),
	}, nil
}

func (s *studentService) buildSummary(ctx context.Context, userID uint) (*UserSummary, error) {
	if _, err := s.repo.User().GetByID(ctx, nil, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	attempts, err := s.repo.Attempt().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}

	summary := SummarizeUser(userID, attempts)
	return &summary, nil
}

func (s *studentService) GetLeaderboard(ctx context.Context) (*LeaderboardReport, error) {
	var report LeaderboardReport

	err := s.reportCache().CacheOrExecute(ctx, leaderboardCacheKey, &report, s.cacheTTL, func() (interface{}, error) {
		snapshot, err := s.repo.Report().Snapshot(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load report data: %w", err)
		}

		return &LeaderboardReport{
			Entries:         Leaderboard(snapshot.Users, snapshot.Attempts),
			MonthlyAttempts: MonthlyDistribution(snapshot),
			SubjectAttempts: SubjectDistribution(snapshot),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *studentService) ListScoreDetails(ctx context.Context, userID uint) ([]ScoreDetail, error) {
	attempts, err := s.repo.Attempt().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}

	details := make([]ScoreDetail, 0, len(attempts))
	for _, attempt := range attempts {
		details = append(details, newScoreDetail(attempt))
	}
	return details, nil
}

// reportCache falls back to an unbacked helper so callers never branch on redis
func (s *studentService) reportCache() *cache.CacheHelper {
	return reportCache(s.cacheManager)
}

func reportCache(cm *cache.CacheManager) *cache.CacheHelper {
	if cm == nil || cm.Report == nil {
		return cache.NewCacheHelper(nil, cache.ReportCacheConfig.Prefix)
	}
	return cm.Report
}
