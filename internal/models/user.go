package models

import "time"

// User represents an operator of the desk.
type User struct {
	UserID         string  `json:"userID" db:"user_id"`
	Username       string  `json:"username" db:"username"`
	PasswordHash   string  `json:"-" db:"password_hash"`
	Name           string  `json:"name" db:"name"`
	Email          string  `json:"email" db:"email"`
	Role           string  `json:"role" db:"role"`
	AuthProvider   string  `json:"authProvider" db:"auth_provider"`
	ProviderUserID *string `json:"-" db:"provider_user_id"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}
