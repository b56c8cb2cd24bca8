package repositories

import "context"

// Repository is the storage surface of the quiz service. Methods taking a
// tx *gorm.DB run on it when non-nil.
type Repository interface {
	Subject() SubjectRepository
	Chapter() ChapterRepository
	Quiz() QuizRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	User() UserRepository
	Report() ReportRepository

	// WithTransaction runs fn against a repository bound to one transaction.
	// Returning an error from fn rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns the connections behind a Repository
type RepositoryManager interface {
	// Initialize verifies the connections and builds the repository
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
