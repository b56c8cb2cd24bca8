package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for user operations. Users are never deleted in normal flow.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)

	// Validation and checks
	ExistsByUsernameOrEmail(ctx context.Context, tx *gorm.DB, username, email string) (bool, error)
}
