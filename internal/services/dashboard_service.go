package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

const adminReportCacheKey = "admin"

type dashboardService struct {
	repo         repositories.Repository
	cacheManager *cache.CacheManager
	logger       *slog.Logger
	cacheTTL     time.Duration
}

func NewDashboardService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, cacheTTL time.Duration) DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = cache.ReportCacheConfig.TTL
	}
	return &dashboardService{
		repo:         repo,
		cacheManager: cacheManager,
		logger:       logger,
		cacheTTL:     cacheTTL,
	}
}

// GetAdminReport returns every admin statistic computed from one snapshot
func (s *dashboardService) GetAdminReport(ctx context.Context) (*AdminReport, error) {
	var report AdminReport

	err := reportCache(s.cacheManager).CacheOrExecute(ctx, adminReportCacheKey, &report, s.cacheTTL, func() (interface{}, error) {
		return s.buildAdminReport(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *dashboardService) buildAdminReport(ctx context.Context) (*AdminReport, error) {
	start := time.Now()

	snapshot, err := s.repo.Report().Snapshot(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load report data: %w", err)
	}

	report := &AdminReport{
		Overview:           AdminOverview(snapshot),
		AttemptsByDate:     AttemptsByDate(snapshot.Attempts),
		ScoreRanges:        ScoreHistogram(snapshot.Attempts),
		SubjectPerformance: SubjectPerformance(snapshot),
		QuizPerformance:    QuizPerformance(snapshot.Quizzes, snapshot.Attempts, len(snapshot.Users)),
		RecentAttempts:     RecentAttempts(snapshot, recentAttemptsLimit),
		RecentUsers:        RecentUsers(snapshot.Users, recentUsersLimit),
	}

	s.logger.Info("Admin report computed",
		"users", report.Overview.TotalUsers,
		"attempts", report.Overview.TotalAttempts,
		"duration", time.Since(start))

	return report, nil
}
