package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/collabrixo/core/internal/application/services"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// TimerHandler handles countdown timer requests
type TimerHandler struct {
	timerService *services.TimerService
	logger       *logger.Logger
}

// NewTimerHandler creates a new timer handler
func NewTimerHandler(timerService *services.TimerService, logger *logger.Logger) *TimerHandler {
	return &TimerHandler{
		timerService: timerService,
		logger:       logger,
	}
}

// GetTimer returns the countdown timer, creating the default record on
// first access.
func (h *TimerHandler) GetTimer(c echo.Context) error {
	timer, err := h.timerService.Get(c.Request().Context())
	if err != nil {
		h.logger.Error("Get timer failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve timer")
	}

	return c.JSON(http.StatusOK, timer)
}

// SetTimer updates the timer's target date and active flag
func (h *TimerHandler) SetTimer(c echo.Context) error {
	var req ports.SetTimerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	timer, err := h.timerService.Set(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Set timer failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, timer)
}
