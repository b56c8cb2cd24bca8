package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

// ===== REQUEST/RESPONSE DTOs =====

// SubmitAttemptRequest carries answers already normalised to question id -> raw option
type SubmitAttemptRequest struct {
	QuizID  uint
	UserID  uint
	Answers map[uint]string
}

type SubmitAttemptResponse struct {
	AttemptID      uint      `json:"attempt_id"`
	QuizID         uint      `json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// AttemptQuestion is a question as shown to the learner; the correct option is never included
type AttemptQuestion struct {
	ID        uint      `json:"id"`
	Statement string    `json:"statement"`
	Options   [4]string `json:"options"`
}

type StartAttemptResponse struct {
	Quiz      QuizSummary       `json:"quiz"`
	Questions []AttemptQuestion `json:"questions"`
}

type AttemptResultResponse struct {
	Quiz    QuizSummary     `json:"quiz"`
	Attempt *models.Attempt `json:"attempt"`
}

// QuizSummary is a flat, cache friendly view of a quiz
type QuizSummary struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	ChapterID       uint       `json:"chapter_id"`
	ChapterName     string     `json:"chapter_name,omitempty"`
	SubjectID       uint       `json:"subject_id,omitempty"`
	SubjectName     string     `json:"subject_name,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`
	QuestionCount   int        `json:"question_count"`
}

type UserDashboard struct {
	Summary  UserSummary   `json:"summary"`
	Upcoming []QuizSummary `json:"upcoming_quizzes"`
}

type LeaderboardReport struct {
	Entries         []LeaderboardEntry `json:"entries"`
	MonthlyAttempts []LabelCount       `json:"monthly_attempts"`
	SubjectAttempts []LabelCount       `json:"subject_attempts"`
}

type ScoreDetail struct {
	AttemptID    uint      `json:"attempt_id"`
	QuizID       uint      `json:"quiz_id"`
	QuizName     string    `json:"quiz_name"`
	NumQuestions int       `json:"num_questions"`
	QuizDate     string    `json:"quiz_date"`
	Score        int       `json:"score"`
	Timestamp    time.Time `json:"timestamp"`
}

type AdminReport struct {
	Overview           AdminTotals     `json:"overview"`
	AttemptsByDate     []DateCount     `json:"attempts_by_date"`
	ScoreRanges        []RangeCount    `json:"score_ranges"`
	SubjectPerformance []SubjectStat   `json:"subject_performance"`
	QuizPerformance    []QuizStat      `json:"quiz_performance"`
	RecentAttempts     []RecentAttempt `json:"recent_attempts"`
	RecentUsers        []RecentUser    `json:"recent_users"`
}

type SearchResults struct {
	Query    string            `json:"query"`
	Subjects []*models.Subject `json:"subjects"`
	Quizzes  []QuizSummary     `json:"quizzes"`
	Scores   []ScoreDetail     `json:"scores"`
}

// Identity is what an identity provider knows about the caller
type Identity struct {
	Username string
	Email    string
	FullName string
}

type AdminAccount struct {
	Username string
	Email    string
	FullName string
}

// ===== SERVICE INTERFACES =====

type AttemptService interface {
	// Start returns the quiz questions in a fresh random order, without answers
	Start(ctx context.Context, quizID uint) (*StartAttemptResponse, error)
	Submit(ctx context.Context, req *SubmitAttemptRequest) (*SubmitAttemptResponse, error)
	GetResult(ctx context.Context, userID, quizID uint) (*AttemptResultResponse, error)
}

type StudentService interface {
	GetDashboard(ctx context.Context, userID uint) (*UserDashboard, error)
	GetLeaderboard(ctx context.Context) (*LeaderboardReport, error)
	ListScoreDetails(ctx context.Context, userID uint) ([]ScoreDetail, error)
}

type DashboardService interface {
	GetAdminReport(ctx context.Context) (*AdminReport, error)
}

type ExportService interface {
	// WriteAdminReport writes the admin report as an xlsx workbook
	WriteAdminReport(ctx context.Context, w io.Writer) error
}

type CatalogService interface {
	ListSubjects(ctx context.Context) ([]*models.Subject, error)
	ListChapters(ctx context.Context, filters repositories.ChapterFilters) ([]*models.Chapter, error)
	ListQuizzes(ctx context.Context, filters repositories.QuizFilters) ([]QuizSummary, error)
	GetQuiz(ctx context.Context, id uint) (*QuizSummary, error)
	Search(ctx context.Context, query string) (*SearchResults, error)
}

type UserService interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// ProvisionFromIdentity returns the local user for an identity, creating a non-admin one if needed
	ProvisionFromIdentity(ctx context.Context, identity Identity) (*models.User, error)
	// EnsureAdmin creates the admin account unless the username or email is taken
	EnsureAdmin(ctx context.Context, account AdminAccount) (*models.User, bool, error)
}

type ServiceManager interface {
	Attempt() AttemptService
	Student() StudentService
	Dashboard() DashboardService
	Export() ExportService
	Catalog() CatalogService
	User() UserService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
