package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/dto"
	"github.com/mosala/cashdesk_backend/internal/middleware"
)

// correctionHandler handles reversal of validated transactions.
type correctionHandler struct {
	correctionService portssvc.CorrectionSvcFacade
}

func newCorrectionHandler(correctionService portssvc.CorrectionSvcFacade) *correctionHandler {
	return &correctionHandler{correctionService: correctionService}
}

// correctTransaction godoc
// @Summary Correct a validated transaction
// @Description Creates a validated mirror transaction reversing every posting line of the original
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID of the original"
// @Param correction body dto.CorrectionRequest true "Correction reason"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse "Missing reason or original not validated"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Original already corrected"
// @Failure 422 {object} ErrorResponse "Original is not eligible for correction"
// @Router /transactions/{transactionID}/correction [post]
func (h *correctionHandler) correctTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	correction, err := h.correctionService.Correct(c.Request.Context(), c.Param("transactionID"), req.Reason, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to correct transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(correction))
}
