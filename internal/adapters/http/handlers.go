package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/collabrixo/core/internal/application/services"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RefreshTokenRequest carries a refresh token submission
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Register handles account creation
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Registration failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Login failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(http.StatusOK, response)
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	response, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("Token refresh failed", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	return c.JSON(http.StatusOK, response)
}

// Logout handles user logout
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.authService.Logout(c.Request().Context(), userID); err != nil {
		h.logger.Error("Logout failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Logged out successfully"})
}

// Session returns the account behind the current session
func (h *AuthHandler) Session(c echo.Context) error {
	userID := getUserIDFromContext(c)

	user, err := h.authService.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Session lookup failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusUnauthorized, "Session not found")
	}

	return c.JSON(http.StatusOK, user)
}

// getUserIDFromContext extracts user ID from context with proper error handling
func getUserIDFromContext(c echo.Context) uuid.UUID {
	userIDStr, ok := c.Get("user").(string)
	if !ok {
		return uuid.Nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil
	}

	return userID
}
