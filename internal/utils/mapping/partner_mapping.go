package mapping

import (
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/mosala/cashdesk_backend/internal/models"
)

// ToModelPartnerService converts a domain PartnerService to its model
func ToModelPartnerService(d domain.PartnerService) models.PartnerService {
	return models.PartnerService{
		ServiceID:   d.ServiceID,
		Name:        d.Name,
		Code:        d.Code,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPartnerService converts a model PartnerService to its domain form
func ToDomainPartnerService(m models.PartnerService) domain.PartnerService {
	return domain.PartnerService{
		ServiceID:   m.ServiceID,
		Name:        m.Name,
		Code:        m.Code,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
