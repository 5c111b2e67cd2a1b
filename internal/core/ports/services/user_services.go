package services

import (
	"context"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
)

// UserSvcFacade manages teller and back-office users. Authentication itself
// happens in handlers/middleware; the ledger core only consumes user IDs.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, username string, name string, email string, password string, role domain.UserRole, creatorUserID string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
	ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error
	// CreateOAuthUser finds or creates a user for an external identity provider.
	CreateOAuthUser(ctx context.Context, name string, email string, provider domain.AuthProvider, providerUserID string) (*domain.User, error)
}
