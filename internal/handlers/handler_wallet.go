package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosala/cashdesk_backend/internal/core/builders"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/dto"
	"github.com/mosala/cashdesk_backend/internal/middleware"
)

// walletHandler handles wallet queries and the balance-affecting desk
// operations that bypass the draft stage.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

func newWalletHandler(walletService portssvc.WalletSvcFacade) *walletHandler {
	return &walletHandler{walletService: walletService}
}

// listWallets godoc
// @Summary List all wallets with their current balances
// @Tags wallets
// @Produce json
// @Success 200 {array} dto.WalletResponse
// @Router /wallets [get]
func (h *walletHandler) listWallets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	wallets, err := h.walletService.ListWallets(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list wallets")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponses(wallets))
}

// getWallet godoc
// @Summary Get a wallet by ID
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Success 200 {object} dto.WalletResponse
// @Failure 404 {object} ErrorResponse
// @Router /wallets/{walletID} [get]
func (h *walletHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	wallet, err := h.walletService.GetWallet(c.Request.Context(), c.Param("walletID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve wallet")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// supply godoc
// @Summary Record a cash supply entry or exit
// @Description Persists a validated transaction and applies wallet deltas atomically
// @Tags wallets
// @Accept json
// @Produce json
// @Param supply body dto.SupplyRequest true "Supply details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Insufficient funds"
// @Router /wallets/supply [post]
func (h *walletHandler) supply(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SupplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	header, err := h.walletService.Supply(c.Request.Context(), builders.SupplyParams{
		Direction:   domain.SupplyDirection(req.Direction),
		ServiceID:   req.ServiceID,
		Currency:    domain.Currency(req.Currency),
		Amount:      req.Amount,
		Description: req.Description,
	}, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to record supply")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(header))
}

// mixedWithdrawal godoc
// @Summary Record a withdrawal paid out in two currencies
// @Tags wallets
// @Accept json
// @Produce json
// @Param withdrawal body dto.MixedWithdrawalRequest true "Mixed withdrawal details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Insufficient funds"
// @Router /wallets/mixed-withdrawal [post]
func (h *walletHandler) mixedWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.MixedWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	header, err := h.walletService.MixedWithdrawal(c.Request.Context(), builders.MixedWithdrawalParams{
		ServiceID:       req.ServiceID,
		RequestCurrency: domain.Currency(req.RequestCurrency),
		PayoutCurrency:  domain.Currency(req.PayoutCurrency),
		TotalAmount:     req.TotalAmount,
		CashAvailable:   req.CashAvailable,
		Commission:      req.Commission,
		Rate:            req.Rate,
		Description:     req.Description,
	}, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to record mixed withdrawal")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(header))
}

// mixedDeposit godoc
// @Summary Record a deposit funded in two currencies
// @Tags wallets
// @Accept json
// @Produce json
// @Param deposit body dto.MixedDepositRequest true "Mixed deposit details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Router /wallets/mixed-deposit [post]
func (h *walletHandler) mixedDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.MixedDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	header, err := h.walletService.MixedDeposit(c.Request.Context(), builders.MixedDepositParams{
		ServiceID:       req.ServiceID,
		RequestCurrency: domain.Currency(req.RequestCurrency),
		FundingCurrency: domain.Currency(req.FundingCurrency),
		TotalAmount:     req.TotalAmount,
		CashReceived:    req.CashReceived,
		Commission:      req.Commission,
		Rate:            req.Rate,
		Description:     req.Description,
	}, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to record mixed deposit")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(header))
}

func registerWalletRoutes(group *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := newWalletHandler(walletService)

	wallets := group.Group("/wallets")
	{
		wallets.GET("", h.listWallets)
		wallets.GET("/:walletID", h.getWallet)
		wallets.POST("/supply", h.supply)
		wallets.POST("/mixed-withdrawal", h.mixedWithdrawal)
		wallets.POST("/mixed-deposit", h.mixedDeposit)
	}
}
