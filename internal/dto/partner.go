package dto

import (
	"time"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
)

// CreatePartnerServiceRequest registers a new partner service at the desk.
type CreatePartnerServiceRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required,alphanum,max=16"`
}

// PartnerServiceResponse is the API shape of a partner service.
type PartnerServiceResponse struct {
	ServiceID string    `json:"serviceID"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToPartnerServiceResponse converts a domain partner service to its API shape.
func ToPartnerServiceResponse(service *domain.PartnerService) PartnerServiceResponse {
	return PartnerServiceResponse{
		ServiceID: service.ServiceID,
		Name:      service.Name,
		Code:      service.Code,
		IsActive:  service.IsActive,
		CreatedAt: service.CreatedAt,
	}
}

// ToPartnerServiceResponses converts a slice of partner services.
func ToPartnerServiceResponses(services []domain.PartnerService) []PartnerServiceResponse {
	responses := make([]PartnerServiceResponse, len(services))
	for i := range services {
		responses[i] = ToPartnerServiceResponse(&services[i])
	}
	return responses
}
