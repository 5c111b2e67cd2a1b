package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/dto"
	"github.com/mosala/cashdesk_backend/internal/middleware"
	"github.com/mosala/cashdesk_backend/internal/utils"
	"github.com/mosala/cashdesk_backend/pkg/config"
)

// authHandler handles login with username and password.
type authHandler struct {
	userService portssvc.UserSvcFacade
	cfg         *config.Config
}

func newAuthHandler(userService portssvc.UserSvcFacade, cfg *config.Config) *authHandler {
	return &authHandler{userService: userService, cfg: cfg}
}

// login godoc
// @Summary Authenticate with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 429 {object} ErrorResponse "Too many attempts"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	user, err := h.userService.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid username or password"})
			return
		}
		logger.Error("Failed to look up user during login", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Login failed"})
		return
	}

	if user.AuthProvider != domain.ProviderLocal || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid username or password"})
		return
	}

	token, err := utils.GenerateJWT(user.UserID, h.cfg.JWTSecret, h.cfg.JWTExpiryDuration, h.cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to generate JWT", slog.String("error", err.Error()), slog.String("userID", user.UserID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Login failed"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	})
}

// registerAuthRoutes registers the public authentication routes with a login
// rate limit keyed on client IP.
func registerAuthRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade, cfg *config.Config) {
	h := newAuthHandler(userService, cfg)

	rate, err := limiter.NewRateFromFormatted(cfg.LoginRateLimit)
	if err != nil {
		// Bad operator input; fall back rather than leaving login unthrottled.
		rate, _ = limiter.NewRateFromFormatted("5-M")
	}
	loginLimiter := limiter.New(memory.NewStore(), rate)

	auth := rg.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimit(loginLimiter), h.login)
	}
}
