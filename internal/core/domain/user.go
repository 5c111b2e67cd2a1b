package domain

import "time"

// UserRole controls what a user may do at the desk.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleTeller UserRole = "TELLER"
)

// AuthProvider identifies how a user authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// User is a teller or back-office user. The ledger core never authenticates;
// it only stamps whatever identity the middleware hands it.
type User struct {
	UserID         string       `json:"userID"`
	Username       string       `json:"username"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	PasswordHash   string       `json:"-"`
	Role           UserRole     `json:"role"`
	AuthProvider   AuthProvider `json:"authProvider"`
	ProviderUserID string       `json:"-"`
	DeletedAt      *time.Time   `json:"deletedAt,omitempty"`
	AuditFields
}
