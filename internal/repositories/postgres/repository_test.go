package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/pkg"
)

func newTestRepository(t *testing.T) repositories.Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "quiz.db")), &gorm.Config{
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

	return NewPostgreSQLRepository(RepositoryConfig{DB: db})
}

type catalogFixture struct {
	subject  *models.Subject
	chapter  *models.Chapter
	algebra  *models.Quiz
	geometry *models.Quiz
	alice    *models.User
}

func seedCatalog(t *testing.T, repo repositories.Repository) catalogFixture {
	t.Helper()
	ctx := context.Background()

	f := catalogFixture{
		subject: &models.Subject{Name: "Mathematics"},
		alice:   &models.User{Username: "alice", Email: "alice@example.com"},
	}
	mustNoErr(t, repo.Subject().Create(ctx, nil, f.subject))
	mustNoErr(t, repo.User().Create(ctx, nil, f.alice))

	f.chapter = &models.Chapter{Name: "Basics", SubjectID: f.subject.ID}
	mustNoErr(t, repo.Chapter().Create(ctx, nil, f.chapter))

	scheduled := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	f.algebra = &models.Quiz{Name: "Algebra 100%", ChapterID: f.chapter.ID, ScheduledAt: &scheduled, DurationMinutes: 10}
	f.geometry = &models.Quiz{Name: "Geometry", ChapterID: f.chapter.ID, DurationMinutes: 15}
	mustNoErr(t, repo.Quiz().Create(ctx, nil, f.algebra))
	mustNoErr(t, repo.Quiz().Create(ctx, nil, f.geometry))

	for i := 0; i < 3; i++ {
		mustNoErr(t, repo.Question().Create(ctx, nil, &models.Question{
			QuizID:        f.algebra.ID,
			Statement:     "x?",
			Option1:       "a",
			Option2:       "b",
			Option3:       "c",
			Option4:       "d",
			CorrectOption: i + 1,
		}))
	}

	return f
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQuizRepository(t *testing.T) {
	repo := newTestRepository(t)
	f := seedCatalog(t, repo)
	ctx := context.Background()

	quiz, err := repo.Quiz().GetByID(ctx, nil, f.algebra.ID)
	mustNoErr(t, err)
	if quiz.QuestionCount != 3 {
		t.Errorf("QuestionCount = %d, want 3", quiz.QuestionCount)
	}
	if s := quiz.Subject(); s == nil || s.Name != "Mathematics" {
		t.Errorf("subject not preloaded: %+v", s)
	}

	if _, err := repo.Quiz().GetByID(ctx, nil, 999); !repositories.IsNotFoundError(err) {
		t.Errorf("GetByID(999) err = %v, want not found", err)
	}

	subjectID := f.subject.ID
	bySubject, err := repo.Quiz().List(ctx, nil, repositories.QuizFilters{SubjectID: &subjectID})
	mustNoErr(t, err)
	if len(bySubject) != 2 {
		t.Errorf("List by subject = %d quizzes, want 2", len(bySubject))
	}

	otherChapter := f.chapter.ID + 100
	byChapter, err := repo.Quiz().List(ctx, nil, repositories.QuizFilters{SubjectID: &subjectID, ChapterID: &otherChapter})
	mustNoErr(t, err)
	if len(byChapter) != 0 {
		t.Errorf("chapter filter must take precedence, got %d quizzes", len(byChapter))
	}
}

func TestQuizRepository_SearchByName(t *testing.T) {
	repo := newTestRepository(t)
	f := seedCatalog(t, repo)
	ctx := context.Background()

	tests := []struct {
		query string
		want  []uint
	}{
		{query: "", want: []uint{f.algebra.ID, f.geometry.ID}},
		{query: "ALG", want: []uint{f.algebra.ID}},
		{query: "  geo ", want: []uint{f.geometry.ID}},
		{query: "100%", want: []uint{f.algebra.ID}},
		{query: "%", want: []uint{f.algebra.ID}},
		{query: "_", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			quizzes, err := repo.Quiz().SearchByName(ctx, nil, tt.query)
			mustNoErr(t, err)

			if len(quizzes) != len(tt.want) {
				t.Fatalf("got %d quizzes, want %d", len(quizzes), len(tt.want))
			}
			for i, quiz := range quizzes {
				if quiz.ID != tt.want[i] {
					t.Errorf("quiz[%d] = %d, want %d", i, quiz.ID, tt.want[i])
				}
			}
		})
	}
}

func TestQuestionRepository_RejectsInvalidOption(t *testing.T) {
	repo := newTestRepository(t)
	f := seedCatalog(t, repo)

	err := repo.Question().Create(context.Background(), nil, &models.Question{
		QuizID:        f.geometry.ID,
		Statement:     "bad",
		CorrectOption: 5,
	})
	if err == nil {
		t.Fatal("expected error for correct option 5")
	}

	questions, err := repo.Question().ListByQuiz(context.Background(), nil, f.geometry.ID)
	mustNoErr(t, err)
	if len(questions) != 0 {
		t.Errorf("invalid question was stored")
	}
}

func TestAttemptRepository(t *testing.T) {
	repo := newTestRepository(t)
	f := seedCatalog(t, repo)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	older := &models.Attempt{UserID: f.alice.ID, QuizID: f.algebra.ID, TotalScored: 1, Timestamp: base}
	newer := &models.Attempt{UserID: f.alice.ID, QuizID: f.algebra.ID, TotalScored: 3, Timestamp: base.Add(time.Hour)}
	other := &models.Attempt{UserID: f.alice.ID, QuizID: f.geometry.ID, TotalScored: 0, Timestamp: base.Add(-time.Hour)}
	for _, attempt := range []*models.Attempt{newer, older, other} {
		mustNoErr(t, repo.Attempt().Create(ctx, nil, attempt))
	}

	if err := repo.Attempt().Create(ctx, nil, newer); !errors.Is(err, models.ErrAttemptImmutable) {
		t.Errorf("re-creating a stored attempt err = %v, want immutable", err)
	}

	latest, err := repo.Attempt().GetLatestByUserAndQuiz(ctx, nil, f.alice.ID, f.algebra.ID)
	mustNoErr(t, err)
	if latest.ID != newer.ID {
		t.Errorf("latest = %d, want %d", latest.ID, newer.ID)
	}

	if _, err := repo.Attempt().GetLatestByUserAndQuiz(ctx, nil, f.alice.ID+1, f.algebra.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("expected not found, got %v", err)
	}

	attempts, err := repo.Attempt().ListByUser(ctx, nil, f.alice.ID)
	mustNoErr(t, err)
	wantOrder := []uint{other.ID, older.ID, newer.ID}
	if len(attempts) != len(wantOrder) {
		t.Fatalf("ListByUser = %d attempts, want %d", len(attempts), len(wantOrder))
	}
	for i, attempt := range attempts {
		if attempt.ID != wantOrder[i] {
			t.Errorf("attempt[%d] = %d, want %d", i, attempt.ID, wantOrder[i])
		}
	}
	if attempts[2].Quiz == nil || attempts[2].Quiz.QuestionCount != 3 {
		t.Errorf("quiz not preloaded with question count: %+v", attempts[2].Quiz)
	}

	found, err := repo.Attempt().SearchByQuizName(ctx, nil, "alg")
	mustNoErr(t, err)
	if len(found) != 2 || found[0].TotalScored != 3 {
		t.Fatalf("SearchByQuizName = %+v, want best score first", found)
	}
	if found[0].User == nil || found[0].User.Username != "alice" {
		t.Errorf("user not preloaded")
	}
}

func TestWithTransaction_RollsBack(t *testing.T) {
	repo := newTestRepository(t)
	f := seedCatalog(t, repo)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Attempt().Create(ctx, nil, &models.Attempt{UserID: f.alice.ID, QuizID: f.algebra.ID, TotalScored: 2}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	attempts, err := repo.Attempt().ListByUser(ctx, nil, f.alice.ID)
	mustNoErr(t, err)
	if len(attempts) != 0 {
		t.Errorf("rolled back attempt is visible")
	}
}

func TestUserRepository(t *testing.T) {
	repo := newTestRepository(t)
	f := seedCatalog(t, repo)
	ctx := context.Background()

	user, err := repo.User().GetByID(ctx, nil, f.alice.ID)
	mustNoErr(t, err)
	if user.Username != "alice" {
		t.Errorf("username = %q", user.Username)
	}

	if _, err := repo.User().GetByUsername(ctx, nil, "bob"); !repositories.IsNotFoundError(err) {
		t.Errorf("GetByUsername(bob) err = %v, want not found", err)
	}

	tests := []struct {
		username, email string
		want            bool
	}{
		{"alice", "other@example.com", true},
		{"other", "alice@example.com", true},
		{"other", "other@example.com", false},
	}
	for _, tt := range tests {
		exists, err := repo.User().ExistsByUsernameOrEmail(ctx, nil, tt.username, tt.email)
		mustNoErr(t, err)
		if exists != tt.want {
			t.Errorf("ExistsByUsernameOrEmail(%q, %q) = %v, want %v", tt.username, tt.email, exists, tt.want)
		}
	}
}

func TestSnapshotLimit(t *testing.T) {
	repo := newTestRepository(t).(*PostgreSQLRepository)

	if got := snapshotLimit(repo.db); got != snapshotConcurrency {
		t.Errorf("pool limit = %d, want %d", got, snapshotConcurrency)
	}

	tx := repo.db.Begin()
	mustNoErr(t, tx.Error)
	defer tx.Rollback()

	if got := snapshotLimit(tx); got != 1 {
		t.Errorf("transaction limit = %d, want 1", got)
	}
}

func TestReportSnapshot(t *testing.T) {
	repo := newTestRepository(t)
	f := seedCatalog(t, repo)
	ctx := context.Background()

	mustNoErr(t, repo.Attempt().Create(ctx, nil, &models.Attempt{UserID: f.alice.ID, QuizID: f.algebra.ID, TotalScored: 2}))

	snapshot, err := repo.Report().Snapshot(ctx, nil)
	mustNoErr(t, err)

	if len(snapshot.Users) != 1 || len(snapshot.Subjects) != 1 || len(snapshot.Chapters) != 1 ||
		len(snapshot.Quizzes) != 2 || len(snapshot.Attempts) != 1 {
		t.Fatalf("unexpected snapshot sizes: %d users, %d subjects, %d chapters, %d quizzes, %d attempts",
			len(snapshot.Users), len(snapshot.Subjects), len(snapshot.Chapters), len(snapshot.Quizzes), len(snapshot.Attempts))
	}

	attempt := snapshot.Attempts[0]
	if attempt.User == nil || attempt.Quiz == nil {
		t.Fatal("attempt links not set")
	}
	if attempt.Quiz.QuestionCount != 3 {
		t.Errorf("QuestionCount = %d, want 3", attempt.Quiz.QuestionCount)
	}
	if s := attempt.Quiz.Subject(); s == nil || s.ID != f.subject.ID {
		t.Errorf("quiz subject link missing")
	}
	if snapshot.Quizzes[1].QuestionCount != 0 {
		t.Errorf("quiz without questions has count %d", snapshot.Quizzes[1].QuestionCount)
	}

	// Transaction-bound snapshots load sequentially on the single connection
	err = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		txSnapshot, err := tx.Report().Snapshot(ctx, nil)
		if err != nil {
			return err
		}
		if len(txSnapshot.Attempts) != 1 {
			t.Errorf("tx snapshot attempts = %d", len(txSnapshot.Attempts))
		}
		return nil
	})
	mustNoErr(t, err)
}

func TestPing(t *testing.T) {
	repo := newTestRepository(t)
	mustNoErr(t, repo.Ping(context.Background()))
}
