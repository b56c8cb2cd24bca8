package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

func TestCatalogService(t *testing.T) {
	repo := NewMockRepository()
	alice := repo.addUser("alice", false)
	math := repo.addSubject("Mathematics")
	physics := repo.addSubject("Physics")
	algebra := repo.addChapter("Algebra", math)
	geometry := repo.addChapter("Geometry", math)
	motion := repo.addChapter("Motion", physics)
	linear := repo.addQuiz("Linear algebra basics", algebra, nil)
	repo.addQuiz("Triangles", geometry, nil)
	kinematics := repo.addQuiz("Kinematics", motion, nil)
	repo.addAttempt(alice, linear, 1, baseTime)
	repo.addAttempt(alice, linear, 3, baseTime)

	svc := NewCatalogService(repo, testLogger())
	ctx := context.Background()

	t.Run("list chapters by subject", func(t *testing.T) {
		chapters, err := svc.ListChapters(ctx, repositories.ChapterFilters{SubjectID: &math.ID})
		if err != nil {
			t.Fatal(err)
		}
		if len(chapters) != 2 {
			t.Errorf("got %d chapters, want 2", len(chapters))
		}
	})

	t.Run("quiz filters", func(t *testing.T) {
		tests := []struct {
			name    string
			filters repositories.QuizFilters
			want    int
		}{
			{name: "all", filters: repositories.QuizFilters{}, want: 3},
			{name: "by subject", filters: repositories.QuizFilters{SubjectID: &math.ID}, want: 2},
			{name: "chapter wins over subject", filters: repositories.QuizFilters{SubjectID: &math.ID, ChapterID: &motion.ID}, want: 1},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				quizzes, err := svc.ListQuizzes(ctx, tt.filters)
				if err != nil {
					t.Fatal(err)
				}
				if len(quizzes) != tt.want {
					t.Errorf("got %d quizzes, want %d", len(quizzes), tt.want)
				}
			})
		}
	})

	t.Run("get quiz", func(t *testing.T) {
		quiz, err := svc.GetQuiz(ctx, kinematics.ID)
		if err != nil {
			t.Fatal(err)
		}
		if quiz.SubjectName != "Physics" || quiz.ChapterName != "Motion" {
			t.Errorf("quiz view = %+v", quiz)
		}
		if _, err := svc.GetQuiz(ctx, 999); !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("unknown quiz error = %v", err)
		}
	})

	t.Run("search", func(t *testing.T) {
		results, err := svc.Search(ctx, "  ALGEBRA ")
		if err != nil {
			t.Fatal(err)
		}
		if results.Query != "ALGEBRA" {
			t.Errorf("query = %q", results.Query)
		}
		if len(results.Subjects) != 0 {
			t.Errorf("subjects = %+v", results.Subjects)
		}
		if len(results.Quizzes) != 1 || results.Quizzes[0].ID != linear.ID {
			t.Errorf("quizzes = %+v", results.Quizzes)
		}
		if len(results.Scores) != 2 || results.Scores[0].Score != 3 {
			t.Errorf("scores = %+v", results.Scores)
		}

		all, err := svc.Search(ctx, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(all.Subjects) != 2 || len(all.Quizzes) != 3 {
			t.Errorf("empty query matched %d subjects, %d quizzes", len(all.Subjects), len(all.Quizzes))
		}
	})
}
