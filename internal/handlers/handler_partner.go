package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/dto"
	"github.com/mosala/cashdesk_backend/internal/middleware"
)

// partnerHandler handles partner service registration and lookup.
type partnerHandler struct {
	partnerService portssvc.PartnerSvcFacade
}

func newPartnerHandler(partnerService portssvc.PartnerSvcFacade) *partnerHandler {
	return &partnerHandler{partnerService: partnerService}
}

// createPartnerService godoc
// @Summary Register a partner service
// @Description Creates the service and opens one virtual wallet per supported currency
// @Tags services
// @Accept json
// @Produce json
// @Param service body dto.CreatePartnerServiceRequest true "Partner service details"
// @Success 201 {object} dto.PartnerServiceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Code already in use"
// @Router /services [post]
func (h *partnerHandler) createPartnerService(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreatePartnerServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	service, err := h.partnerService.CreatePartnerService(c.Request.Context(), req.Name, req.Code, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create partner service")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPartnerServiceResponse(service))
}

// listPartnerServices godoc
// @Summary List partner services
// @Tags services
// @Produce json
// @Param includeInactive query bool false "Include deactivated services"
// @Success 200 {array} dto.PartnerServiceResponse
// @Router /services [get]
func (h *partnerHandler) listPartnerServices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	includeInactive := c.Query("includeInactive") == "true"
	services, err := h.partnerService.ListPartnerServices(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, logger, err, "Failed to list partner services")
		return
	}
	c.JSON(http.StatusOK, dto.ToPartnerServiceResponses(services))
}

// getPartnerService godoc
// @Summary Get a partner service by ID
// @Tags services
// @Produce json
// @Param serviceID path string true "Service ID"
// @Success 200 {object} dto.PartnerServiceResponse
// @Failure 404 {object} ErrorResponse
// @Router /services/{serviceID} [get]
func (h *partnerHandler) getPartnerService(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	service, err := h.partnerService.GetPartnerServiceByID(c.Request.Context(), c.Param("serviceID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve partner service")
		return
	}
	c.JSON(http.StatusOK, dto.ToPartnerServiceResponse(service))
}

// deactivatePartnerService godoc
// @Summary Deactivate a partner service
// @Description Deactivation keeps the wallets so past transactions still resolve
// @Tags services
// @Produce json
// @Param serviceID path string true "Service ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} ErrorResponse
// @Router /services/{serviceID} [delete]
func (h *partnerHandler) deactivatePartnerService(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.partnerService.DeactivatePartnerService(c.Request.Context(), c.Param("serviceID"), userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate partner service")
		return
	}
	c.Status(http.StatusNoContent)
}

func registerPartnerRoutes(group *gin.RouterGroup, partnerService portssvc.PartnerSvcFacade) {
	h := newPartnerHandler(partnerService)

	services := group.Group("/services")
	{
		services.POST("", h.createPartnerService)
		services.GET("", h.listPartnerServices)
		services.GET("/:serviceID", h.getPartnerService)
		services.DELETE("/:serviceID", h.deactivatePartnerService)
	}
}
