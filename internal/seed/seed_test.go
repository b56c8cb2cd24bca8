package seed

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/SAP-F-2025/quiz-service/pkg"
)

func newTestRepository(t *testing.T) repositories.Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seed.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := pkg.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
}

func newTestSeeder(repo repositories.Repository) *Seeder {
	s := NewSeeder(repo, validator.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestSeeder_Run(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	result, err := newTestSeeder(repo).Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := Result{
		Users:     DefaultCount,
		Subjects:  DefaultCount,
		Chapters:  DefaultCount,
		Quizzes:   DefaultCount,
		Questions: DefaultCount,
		Attempts:  DefaultCount,
	}
	if *result != want {
		t.Errorf("result = %+v, want %+v", *result, want)
	}

	snapshot, err := repo.Report().Snapshot(ctx, nil)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snapshot.Users) != DefaultCount || len(snapshot.Attempts) != DefaultCount {
		t.Fatalf("stored %d users, %d attempts", len(snapshot.Users), len(snapshot.Attempts))
	}

	for _, attempt := range snapshot.Attempts {
		if attempt.TotalScored < 0 || attempt.TotalScored > 4 {
			t.Errorf("attempt %d score %d out of range", attempt.ID, attempt.TotalScored)
		}
		if attempt.Quiz == nil || attempt.User == nil {
			t.Errorf("attempt %d references missing rows", attempt.ID)
		}
	}
	for _, quiz := range snapshot.Quizzes {
		if quiz.Chapter == nil || quiz.Subject() == nil {
			t.Errorf("quiz %d is not linked to a subject", quiz.ID)
		}
	}
	for _, user := range snapshot.Users {
		if user.IsAdmin {
			t.Errorf("seed user %s must not be admin", user.Username)
		}
	}
}

func TestSeeder_RunTwice(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := newTestSeeder(repo).Run(ctx); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	result, err := newTestSeeder(repo).Run(ctx)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if result.Users != 0 || result.SkippedUsers != DefaultCount {
		t.Errorf("users created/skipped = %d/%d, want 0/%d", result.Users, result.SkippedUsers, DefaultCount)
	}
	if result.Subjects != 0 || result.Attempts != 0 {
		t.Errorf("catalog seeded twice: %+v", *result)
	}

	snapshot, err := repo.Report().Snapshot(ctx, nil)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snapshot.Subjects) != DefaultCount {
		t.Errorf("subjects = %d, want %d", len(snapshot.Subjects), DefaultCount)
	}
}

func TestSeeder_ReusesExistingUsers(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	existing := &models.User{Username: "user3", Email: "someone@example.com"}
	if err := repo.User().Create(ctx, nil, existing); err != nil {
		t.Fatalf("create user: %v", err)
	}

	result, err := newTestSeeder(repo).Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Users != DefaultCount-1 || result.SkippedUsers != 1 {
		t.Errorf("users created/skipped = %d/%d", result.Users, result.SkippedUsers)
	}

	attempts, err := repo.Attempt().ListByUser(ctx, nil, existing.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(attempts) != 1 {
		t.Errorf("existing user got %d attempts, want 1", len(attempts))
	}
}
