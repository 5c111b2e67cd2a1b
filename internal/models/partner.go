package models

// PartnerService is a partner operator the desk fronts (mobile money,
// remittance, banking agent).
type PartnerService struct {
	ServiceID string `json:"serviceID" db:"service_id"`
	Name      string `json:"name" db:"name"`
	Code      string `json:"code" db:"code"`
	IsActive  bool   `json:"isActive" db:"is_active"`
	AuditFields
}
