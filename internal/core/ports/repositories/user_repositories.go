package repositories

import (
	"context"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
)

// UserRepository manages teller and back-office user records.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByProviderID(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error)
	FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
	UpdatePassword(ctx context.Context, userID string, passwordHash string, updatedBy string) error
	MarkUserDeleted(ctx context.Context, userID string, deletedBy string) error
}
