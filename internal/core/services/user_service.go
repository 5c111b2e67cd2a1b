package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/middleware"
	"github.com/mosala/cashdesk_backend/internal/utils"
)

const minPasswordLength = 8

// userService manages teller and back-office users.
type userService struct {
	userRepo portsrepo.UserRepository
	auditSvc portssvc.AuditSvcFacade
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepository, auditSvc portssvc.AuditSvcFacade) portssvc.UserSvcFacade {
	return &userService{
		userRepo: userRepo,
		auditSvc: auditSvc,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) CreateUser(ctx context.Context, username string, name string, email string, password string, role domain.UserRole, creatorUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", apperrors.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}
	if role != domain.RoleAdmin && role != domain.RoleTeller {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Role:         role,
		AuthProvider: domain.ProviderLocal,
		AuditFields:  newAuditFields(creatorUserID, now),
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("username", username), slog.String("error", err.Error()))
		return nil, err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "users", "INSERT", user.UserID,
			map[string]string{"username": user.Username, "role": string(user.Role)}, creatorUserID)
	}
	logger.Info("User created", slog.String("user_id", user.UserID), slog.String("username", username))

	user.PasswordHash = ""
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.FindUserByUsername(ctx, username)
}

func (s *userService) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.FindUsers(ctx, limit, offset)
}

func (s *userService) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.AuthProvider != domain.ProviderLocal {
		return fmt.Errorf("%w: externally managed accounts have no local password", apperrors.ErrValidation)
	}
	if !utils.CheckPasswordHash(currentPassword, user.PasswordHash) {
		logger.Warn("Password change rejected, current password mismatch", slog.String("user_id", userID))
		return fmt.Errorf("%w: current password is incorrect", apperrors.ErrValidation)
	}

	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, newHash, userID); err != nil {
		logger.Error("Failed to update password", slog.String("user_id", userID), slog.String("error", err.Error()))
		return err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "users", "UPDATE", userID, map[string]string{"field": "password"}, userID)
	}
	logger.Info("Password changed", slog.String("user_id", userID))
	return nil
}

func (s *userService) CreateOAuthUser(ctx context.Context, name string, email string, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if provider == domain.ProviderLocal {
		return nil, fmt.Errorf("%w: LOCAL is not an external provider", apperrors.ErrValidation)
	}
	if providerUserID == "" || email == "" {
		return nil, fmt.Errorf("%w: provider user ID and email are required", apperrors.ErrValidation)
	}

	existing, err := s.userRepo.FindUserByProviderID(ctx, provider, providerUserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// First sign-in: provision the account. The username is derived from the
	// email with a random suffix to dodge collisions with local accounts.
	suffix, err := utils.GenerateSecureRandomString(2)
	if err != nil {
		return nil, fmt.Errorf("failed to generate username suffix: %w", err)
	}
	username := strings.ToLower(strings.SplitN(email, "@", 2)[0]) + "-" + suffix

	now := time.Now().UTC()
	user := domain.User{
		UserID:         uuid.NewString(),
		Username:       username,
		Name:           strings.TrimSpace(name),
		Email:          strings.TrimSpace(email),
		Role:           domain.RoleTeller,
		AuthProvider:   provider,
		ProviderUserID: providerUserID,
	}
	user.AuditFields = newAuditFields(user.UserID, now)

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to provision OAuth user", slog.String("email", email), slog.String("error", err.Error()))
		return nil, err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "users", "INSERT", user.UserID,
			map[string]string{"username": user.Username, "provider": string(provider)}, user.UserID)
	}
	logger.Info("OAuth user provisioned", slog.String("user_id", user.UserID), slog.String("provider", string(provider)))
	return &user, nil
}
