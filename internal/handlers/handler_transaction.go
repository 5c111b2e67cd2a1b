package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mosala/cashdesk_backend/internal/core/builders"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/dto"
	"github.com/mosala/cashdesk_backend/internal/middleware"
)

// transactionHandler handles HTTP requests for the transaction lifecycle.
type transactionHandler struct {
	txnService portssvc.TransactionSvcFacade
}

func newTransactionHandler(txnService portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{txnService: txnService}
}

// createTransaction godoc
// @Summary Create a draft transaction from explicit posting lines
// @Description Creates a DRAFT transaction; the line set must balance per currency
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Header and posting lines"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse "Invalid request or unbalanced lines"
// @Failure 409 {object} ErrorResponse "Duplicate reference"
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	header := domain.TransactionHeader{
		OperationType:     domain.OperationType(req.OperationType),
		ReferenceCurrency: domain.Currency(req.ReferenceCurrency),
		TotalAmount:       req.TotalAmount,
	}
	lines := make([]domain.PostingLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = l.ToDomainLine(i + 1)
	}

	created, err := h.txnService.Create(c.Request.Context(), header, lines, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(created))
}

// createDraft runs a builder and persists its output as a draft.
func (h *transactionHandler) createDraft(c *gin.Context, draft builders.Draft, buildErr error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if buildErr != nil {
		respondError(c, logger, buildErr, "Failed to build transaction")
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	created, err := h.txnService.Create(c.Request.Context(), draft.Header, draft.Lines, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(created))
}

// createDeposit godoc
// @Summary Record a client deposit as a draft
// @Tags transactions
// @Accept json
// @Produce json
// @Param deposit body dto.DepositRequest true "Deposit details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Router /transactions/deposit [post]
func (h *transactionHandler) createDeposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}
	draft, err := builders.BuildDeposit(builders.DepositParams{
		ServiceID:   req.ServiceID,
		Currency:    domain.Currency(req.Currency),
		Amount:      req.Amount,
		Description: req.Description,
	})
	h.createDraft(c, draft, err)
}

// createWithdrawal godoc
// @Summary Record a client withdrawal as a draft
// @Tags transactions
// @Accept json
// @Produce json
// @Param withdrawal body dto.WithdrawalRequest true "Withdrawal details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Router /transactions/withdrawal [post]
func (h *transactionHandler) createWithdrawal(c *gin.Context) {
	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}
	draft, err := builders.BuildWithdrawal(builders.WithdrawalParams{
		ServiceID:   req.ServiceID,
		Currency:    domain.Currency(req.Currency),
		Amount:      req.Amount,
		Description: req.Description,
	})
	h.createDraft(c, draft, err)
}

// createExchange godoc
// @Summary Record a currency exchange as a draft
// @Tags transactions
// @Accept json
// @Produce json
// @Param exchange body dto.ExchangeRequest true "Exchange details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Router /transactions/exchange [post]
func (h *transactionHandler) createExchange(c *gin.Context) {
	var req dto.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}
	draft, err := builders.BuildExchange(builders.ExchangeParams{
		Source:     domain.Currency(req.Source),
		Dest:       domain.Currency(req.Dest),
		Amount:     req.Amount,
		Commission: req.Commission,
		Rate:       req.Rate,
	})
	h.createDraft(c, draft, err)
}

// createTransfer godoc
// @Summary Record a transfer between two service wallets as a draft
// @Tags transactions
// @Accept json
// @Produce json
// @Param transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Router /transactions/transfer [post]
func (h *transactionHandler) createTransfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}
	draft, err := builders.BuildTransfer(builders.TransferParams{
		FromServiceID: req.FromServiceID,
		ToServiceID:   req.ToServiceID,
		Currency:      domain.Currency(req.Currency),
		Amount:        req.Amount,
		Description:   req.Description,
	})
	h.createDraft(c, draft, err)
}

// getTransaction godoc
// @Summary Get a transaction and its posting lines
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	header, err := h.txnService.Get(c.Request.Context(), c.Param("transactionID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(header))
}

// listTransactions godoc
// @Summary List transactions, newest first
// @Tags transactions
// @Produce json
// @Param status query string false "Filter by status (DRAFT, VALIDATED, CANCELLED)"
// @Param operationType query string false "Filter by operation type"
// @Param from query string false "RFC3339 lower bound on creation time"
// @Param to query string false "RFC3339 upper bound on creation time"
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var filter portsrepo.TransactionFilter
	if status := c.Query("status"); status != "" {
		s := domain.TransactionStatus(status)
		filter.Status = &s
	}
	if opType := c.Query("operationType"); opType != "" {
		o := domain.OperationType(opType)
		filter.OperationType = &o
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid 'from' timestamp"})
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid 'to' timestamp"})
			return
		}
		filter.To = &t
	}

	headers, err := h.txnService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponses(headers))
}

// validateTransaction godoc
// @Summary Validate a draft transaction
// @Description Compare-and-set DRAFT to VALIDATED; reports whether this call applied the transition
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} map[string]bool "applied"
// @Failure 400 {object} ErrorResponse "Draft does not balance"
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{transactionID}/validate [post]
func (h *transactionHandler) validateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	applied, err := h.txnService.Validate(c.Request.Context(), c.Param("transactionID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to validate transaction")
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// cancelTransaction godoc
// @Summary Cancel a draft transaction
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 204 "Cancelled"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Validated transactions require a correction"
// @Router /transactions/{transactionID}/cancel [post]
func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.txnService.Cancel(c.Request.Context(), c.Param("transactionID"), userID); err != nil {
		respondError(c, logger, err, "Failed to cancel transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// addLine godoc
// @Summary Add a posting line to a draft transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param line body dto.CreateLineRequest true "Posting line"
// @Success 200 {object} dto.TransactionResponse
// @Failure 409 {object} ErrorResponse "Transaction is not in draft"
// @Router /transactions/{transactionID}/lines [post]
func (h *transactionHandler) addLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	header, err := h.txnService.AddLine(c.Request.Context(), c.Param("transactionID"), req.ToDomainLine(0), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to add posting line")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(header))
}

// updateLine godoc
// @Summary Update a posting line on a draft transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param lineID path string true "Line ID"
// @Param line body dto.CreateLineRequest true "New line content"
// @Success 204 "Updated"
// @Failure 409 {object} ErrorResponse "Transaction is not in draft"
// @Router /transactions/{transactionID}/lines/{lineID} [put]
func (h *transactionHandler) updateLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	line := req.ToDomainLine(0)
	line.LineID = c.Param("lineID")

	if err := h.txnService.UpdateLine(c.Request.Context(), c.Param("transactionID"), line, userID); err != nil {
		respondError(c, logger, err, "Failed to update posting line")
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteLine godoc
// @Summary Delete a posting line from a draft transaction
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param lineID path string true "Line ID"
// @Success 204 "Deleted"
// @Failure 409 {object} ErrorResponse "Transaction is not in draft"
// @Router /transactions/{transactionID}/lines/{lineID} [delete]
func (h *transactionHandler) deleteLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.txnService.DeleteLine(c.Request.Context(), c.Param("transactionID"), c.Param("lineID"), userID); err != nil {
		respondError(c, logger, err, "Failed to delete posting line")
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterTransactionRoutes mounts the transaction lifecycle routes on the group.
func RegisterTransactionRoutes(group *gin.RouterGroup, txnService portssvc.TransactionSvcFacade, correctionService portssvc.CorrectionSvcFacade) {
	h := newTransactionHandler(txnService)
	ch := newCorrectionHandler(correctionService)

	transactions := group.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.POST("/deposit", h.createDeposit)
		transactions.POST("/withdrawal", h.createWithdrawal)
		transactions.POST("/exchange", h.createExchange)
		transactions.POST("/transfer", h.createTransfer)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.POST("/:transactionID/validate", h.validateTransaction)
		transactions.POST("/:transactionID/cancel", h.cancelTransaction)
		transactions.POST("/:transactionID/correction", ch.correctTransaction)
		transactions.POST("/:transactionID/lines", h.addLine)
		transactions.PUT("/:transactionID/lines/:lineID", h.updateLine)
		transactions.DELETE("/:transactionID/lines/:lineID", h.deleteLine)
	}
}
