package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

// identityEmailDomain completes the address of identities that carry no email
const identityEmailDomain = "users.noreply.quiz-service.com"

type userService struct {
	repo         repositories.Repository
	cacheManager *cache.CacheManager
	logger       *slog.Logger
	validator    *validator.Validator
}

func NewUserService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:         repo,
		cacheManager: cacheManager,
		logger:       logger,
		validator:    validator,
	}
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.User().GetByUsername(ctx, nil, username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) ProvisionFromIdentity(ctx context.Context, identity Identity) (*models.User, error) {
	username := strings.TrimSpace(identity.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: identity has no username", ErrUnauthorized)
	}

	user, err := s.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	email := strings.TrimSpace(identity.Email)
	if email == "" {
		email = username + "@" + identityEmailDomain
		s.logger.Warn("Identity has no email, using a placeholder", "username", username, "email", email)
	}

	user = &models.User{
		Username: username,
		Email:    email,
	}
	if name := strings.TrimSpace(identity.FullName); name != "" {
		user.FullName = &name
	}

	if err := s.validator.Validate(user); err != nil {
		s.logger.Warn("Rejected identity with invalid profile", "username", username, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		// A concurrent request may have provisioned the same user first
		if existing, getErr := s.GetByUsername(ctx, username); getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Leaderboard and completion rates count users
	if s.cacheManager != nil {
		s.cacheManager.InvalidateReports(ctx)
	}

	s.logger.Info("User provisioned from identity", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, account AdminAccount) (*models.User, bool, error) {
	exists, err := s.repo.User().ExistsByUsernameOrEmail(ctx, nil, account.Username, account.Email)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check admin: %w", err)
	}
	if exists {
		user, err := s.GetByUsername(ctx, account.Username)
		if err != nil && !isNotFound(err) {
			return nil, false, err
		}
		s.logger.Info("Admin already exists", "username", account.Username)
		return user, false, nil
	}

	admin := &models.User{
		Username: account.Username,
		Email:    account.Email,
		IsAdmin:  true,
	}
	if account.FullName != "" {
		name := account.FullName
		admin.FullName = &name
	}

	if err := s.validator.Validate(admin); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.repo.User().Create(ctx, nil, admin); err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}
	if s.cacheManager != nil {
		s.cacheManager.InvalidateReports(ctx)
	}

	s.logger.Info("Admin created", "user_id", admin.ID, "username", admin.Username)
	return admin, true, nil
}
