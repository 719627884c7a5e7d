package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/collabrixo/core/internal/application/services"
	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// TimelineHandler handles journey timeline requests
type TimelineHandler struct {
	timelineService *services.TimelineService
	logger          *logger.Logger
}

// NewTimelineHandler creates a new timeline handler
func NewTimelineHandler(timelineService *services.TimelineService, logger *logger.Logger) *TimelineHandler {
	return &TimelineHandler{
		timelineService: timelineService,
		logger:          logger,
	}
}

// CreateEvent handles milestone creation
func (h *TimelineHandler) CreateEvent(c echo.Context) error {
	var req ports.CreateTimelineEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event, err := h.timelineService.Create(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create timeline event failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, event)
}

// GetEvent handles getting a milestone by ID
func (h *TimelineHandler) GetEvent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid timeline event ID")
	}

	event, err := h.timelineService.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, event)
}

// UpdateEvent handles partial milestone updates
func (h *TimelineHandler) UpdateEvent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid timeline event ID")
	}

	var req ports.UpdateTimelineEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event, err := h.timelineService.Update(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update timeline event failed", "error", err, "event_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, event)
}

// DeleteEvent handles milestone deletion
func (h *TimelineHandler) DeleteEvent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid timeline event ID")
	}

	if err := h.timelineService.Delete(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete timeline event failed", "error", err, "event_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Timeline event deleted successfully"})
}

// ListEvents handles listing milestones with optional filters
func (h *TimelineHandler) ListEvents(c echo.Context) error {
	filter := ports.TimelineEventFilter{}

	if status := c.QueryParam("status"); status != "" {
		s := entities.TimelineStatus(status)
		if !s.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status parameter")
		}
		filter.Status = &s
	}

	if tag := c.QueryParam("tag"); tag != "" {
		filter.Tag = &tag
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		filter.Limit = limit
	}

	events, err := h.timelineService.List(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List timeline events failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve timeline events")
	}

	return c.JSON(http.StatusOK, events)
}
