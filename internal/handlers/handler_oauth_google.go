package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/dto"
	"github.com/mosala/cashdesk_backend/internal/middleware"
	"github.com/mosala/cashdesk_backend/internal/utils"
	"github.com/mosala/cashdesk_backend/pkg/config"
)

// googleOAuthHandler exchanges a Google authorization code for an application JWT.
type googleOAuthHandler struct {
	userService  portssvc.UserSvcFacade
	cfg          *config.Config
	oauth2Config *oauth2.Config
}

func newGoogleOAuthHandler(userService portssvc.UserSvcFacade, cfg *config.Config) *googleOAuthHandler {
	return &googleOAuthHandler{
		userService: userService,
		cfg:         cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// ExchangeCodeRequest carries the authorization code returned by Google to the frontend.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// exchangeCode godoc
// @Summary Exchange a Google authorization code for an application token
// @Description Exchanges the code with Google, validates the ID token, provisions the user on first sign-in
// @Tags auth
// @Accept json
// @Produce json
// @Param code body ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid or expired authorization code"
// @Failure 401 {object} ErrorResponse "ID token validation failed"
// @Router /auth/google/exchange-code [post]
func (h *googleOAuthHandler) exchangeCode(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	var req ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	token, err := h.oauth2Config.Exchange(ctx, req.Code)
	if err != nil {
		logger.Warn("Failed to exchange authorization code with Google", slog.String("error", err.Error()))
		if strings.Contains(strings.ToLower(err.Error()), "invalid_grant") {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid or expired authorization code"})
			return
		}
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to communicate with Google"})
		return
	}

	idTokenString, ok := token.Extra("id_token").(string)
	if !ok || idTokenString == "" {
		logger.Error("ID token missing from Google token response")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve ID token from Google"})
		return
	}

	payload, err := idtoken.Validate(ctx, idTokenString, h.cfg.GoogleClientID)
	if err != nil {
		logger.Warn("Google ID token validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid Google ID token"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" || payload.Subject == "" {
		logger.Error("Essential claims missing from Google ID token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Essential user information missing from Google token"})
		return
	}

	user, err := h.userService.CreateOAuthUser(ctx, name, email, domain.ProviderGoogle, payload.Subject)
	if err != nil {
		respondError(c, logger, err, "Failed to process Google sign-in")
		return
	}

	appToken, err := utils.GenerateJWT(user.UserID, h.cfg.JWTSecret, h.cfg.JWTExpiryDuration, h.cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to generate JWT", slog.String("error", err.Error()), slog.String("userID", user.UserID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: appToken,
		User:  dto.ToUserResponse(user),
	})
}

func registerGoogleOAuthRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade, cfg *config.Config) {
	h := newGoogleOAuthHandler(userService, cfg)

	googleRoutes := rg.Group("/auth/google")
	{
		googleRoutes.POST("/exchange-code", h.exchangeCode)
	}
}
