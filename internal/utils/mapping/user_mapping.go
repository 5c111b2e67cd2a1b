package mapping

import (
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/mosala/cashdesk_backend/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:         d.UserID,
		Username:       d.Username,
		PasswordHash:   d.PasswordHash,
		Name:           d.Name,
		Email:          d.Email,
		Role:           string(d.Role),
		AuthProvider:   string(d.AuthProvider),
		ProviderUserID: stringToPtr(d.ProviderUserID),
		AuditFields:    ToModelAuditFields(d.AuditFields),
		DeletedAt:      d.DeletedAt,
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:         m.UserID,
		Username:       m.Username,
		PasswordHash:   m.PasswordHash,
		Name:           m.Name,
		Email:          m.Email,
		Role:           domain.UserRole(m.Role),
		AuthProvider:   domain.AuthProvider(m.AuthProvider),
		ProviderUserID: ptrToString(m.ProviderUserID),
		DeletedAt:      m.DeletedAt,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
