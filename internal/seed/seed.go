// Package seed loads demo data into an empty quiz database.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

// DefaultCount is how many rows of each kind Run creates
const DefaultCount = 20

// Result reports what a seed run created
type Result struct {
	Users        int
	SkippedUsers int
	Subjects     int
	Chapters     int
	Quizzes      int
	Questions    int
	Attempts     int
}

type Seeder struct {
	repo      repositories.Repository
	validator *validator.BusinessValidator
	logger    *slog.Logger
	count     int
	now       func() time.Time
}

func NewSeeder(repo repositories.Repository, validator *validator.Validator, logger *slog.Logger) *Seeder {
	return &Seeder{
		repo:      repo,
		validator: validator.GetBusinessValidator(),
		logger:    logger,
		count:     DefaultCount,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds users, then the catalog, then one attempt per seeded user.
// Users whose username or email exists are reused. The catalog is only
// seeded into a database with no subjects. Everything runs in one transaction.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		users, err := s.seedUsers(ctx, tx, result)
		if err != nil {
			return err
		}

		existing, err := tx.Subject().List(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to list subjects: %w", err)
		}
		if len(existing) > 0 {
			s.logger.Info("Catalog already present, skipping catalog and attempts", "subjects", len(existing))
			return nil
		}

		quizzes, err := s.seedCatalog(ctx, tx, result)
		if err != nil {
			return err
		}

		return s.seedAttempts(ctx, tx, users, quizzes, result)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Seed completed",
		"users", result.Users,
		"skipped_users", result.SkippedUsers,
		"subjects", result.Subjects,
		"chapters", result.Chapters,
		"quizzes", result.Quizzes,
		"questions", result.Questions,
		"attempts", result.Attempts,
	)
	return result, nil
}

func (s *Seeder) seedUsers(ctx context.Context, tx repositories.Repository, result *Result) ([]*models.User, error) {
	users := make([]*models.User, 0, s.count)

	for i := 1; i <= s.count; i++ {
		username := fmt.Sprintf("user%d", i)
		email := fmt.Sprintf("user%d@example.com", i)

		exists, err := tx.User().ExistsByUsernameOrEmail(ctx, nil, username, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check user %s: %w", username, err)
		}
		if exists {
			user, err := tx.User().GetByUsername(ctx, nil, username)
			if err != nil {
				// Only the email collided; attempts for this slot are skipped
				if repositories.IsNotFoundError(err) {
					users = append(users, nil)
					result.SkippedUsers++
					continue
				}
				return nil, fmt.Errorf("failed to load user %s: %w", username, err)
			}
			users = append(users, user)
			result.SkippedUsers++
			continue
		}

		fullName := fmt.Sprintf("User %d", i)
		qualification := "B.Sc"
		dob := datatypes.Date(time.Date(1990+i%10, time.Month(i%12+1), i%28+1, 0, 0, 0, 0, time.UTC))
		user := &models.User{
			Username:      username,
			Email:         email,
			FullName:      &fullName,
			Qualification: &qualification,
			DateOfBirth:   &dob,
		}
		if errs := s.validator.ValidateUser(user); len(errs) > 0 {
			return nil, fmt.Errorf("invalid seed user %s: %w", username, errs)
		}
		if err := tx.User().Create(ctx, nil, user); err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", username, err)
		}
		users = append(users, user)
		result.Users++
	}

	return users, nil
}

func (s *Seeder) seedCatalog(ctx context.Context, tx repositories.Repository, result *Result) ([]*models.Quiz, error) {
	subjects := make([]*models.Subject, 0, s.count)
	for i := 1; i <= s.count; i++ {
		description := fmt.Sprintf("Description for Subject %d.", i)
		subject := &models.Subject{
			Name:        fmt.Sprintf("Subject %d", i),
			Description: &description,
		}
		if err := tx.Subject().Create(ctx, nil, subject); err != nil {
			return nil, fmt.Errorf("failed to create subject: %w", err)
		}
		subjects = append(subjects, subject)
		result.Subjects++
	}

	chapters := make([]*models.Chapter, 0, s.count)
	for i := 1; i <= s.count; i++ {
		description := fmt.Sprintf("Description for Chapter %d.", i)
		chapter := &models.Chapter{
			Name:        fmt.Sprintf("Chapter %d", i),
			Description: &description,
			SubjectID:   subjects[i%s.count].ID,
		}
		if err := tx.Chapter().Create(ctx, nil, chapter); err != nil {
			return nil, fmt.Errorf("failed to create chapter: %w", err)
		}
		chapters = append(chapters, chapter)
		result.Chapters++
	}

	quizzes := make([]*models.Quiz, 0, s.count)
	for i := 1; i <= s.count; i++ {
		scheduledAt := time.Date(2025, time.Month(i%12+1), i%28+1, 0, 0, 0, 0, time.UTC)
		quiz := &models.Quiz{
			Name:            fmt.Sprintf("Quiz %d", i),
			ChapterID:       chapters[i%s.count].ID,
			ScheduledAt:     &scheduledAt,
			DurationMinutes: 10 + i%5,
		}
		if errs := s.validator.ValidateQuiz(quiz); len(errs) > 0 {
			return nil, fmt.Errorf("invalid seed quiz %s: %w", quiz.Name, errs)
		}
		if err := tx.Quiz().Create(ctx, nil, quiz); err != nil {
			return nil, fmt.Errorf("failed to create quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
		result.Quizzes++
	}

	for i := 1; i <= s.count; i++ {
		quiz := quizzes[i%s.count]
		question := &models.Question{
			QuizID:        quiz.ID,
			Statement:     fmt.Sprintf("Question %d for %s", i, quiz.Name),
			Option1:       "Option A",
			Option2:       "Option B",
			Option3:       "Option C",
			Option4:       "Option D",
			CorrectOption: i%4 + 1,
		}
		if errs := s.validator.ValidateQuestion(question); len(errs) > 0 {
			return nil, fmt.Errorf("invalid seed question %d: %w", i, errs)
		}
		if err := tx.Question().Create(ctx, nil, question); err != nil {
			return nil, fmt.Errorf("failed to create question: %w", err)
		}
		result.Questions++
	}

	return quizzes, nil
}

func (s *Seeder) seedAttempts(ctx context.Context, tx repositories.Repository, users []*models.User, quizzes []*models.Quiz, result *Result) error {
	now := s.now()

	for i := 1; i <= s.count; i++ {
		user := users[i%len(users)]
		if user == nil {
			continue
		}
		attempt := &models.Attempt{
			UserID:      user.ID,
			QuizID:      quizzes[i%len(quizzes)].ID,
			TotalScored: i % 5,
			Timestamp:   now.Add(-time.Duration(s.count-i) * time.Hour),
		}
		if err := tx.Attempt().Create(ctx, nil, attempt); err != nil {
			return fmt.Errorf("failed to create attempt: %w", err)
		}
		result.Attempts++
	}

	return nil
}
