package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/collabrixo/core/internal/application/services"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// MeetingHandler handles meeting requests
type MeetingHandler struct {
	meetingService *services.MeetingService
	logger         *logger.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService *services.MeetingService, logger *logger.Logger) *MeetingHandler {
	return &MeetingHandler{
		meetingService: meetingService,
		logger:         logger,
	}
}

// CreateMeeting handles meeting creation
func (h *MeetingHandler) CreateMeeting(c echo.Context) error {
	var req ports.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	meeting, err := h.meetingService.Create(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create meeting failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, meeting)
}

// GetMeeting handles getting a meeting by ID
func (h *MeetingHandler) GetMeeting(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid meeting ID")
	}

	meeting, err := h.meetingService.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, meeting)
}

// UpdateMeeting handles partial meeting updates
func (h *MeetingHandler) UpdateMeeting(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid meeting ID")
	}

	var req ports.UpdateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	meeting, err := h.meetingService.Update(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update meeting failed", "error", err, "meeting_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, meeting)
}

// DeleteMeeting handles meeting deletion
func (h *MeetingHandler) DeleteMeeting(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid meeting ID")
	}

	if err := h.meetingService.Delete(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete meeting failed", "error", err, "meeting_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Meeting deleted successfully"})
}

// ListMeetings handles listing meetings with optional date filters
func (h *MeetingHandler) ListMeetings(c echo.Context) error {
	filter := ports.MeetingFilter{}

	if afterStr := c.QueryParam("after"); afterStr != "" {
		after, err := time.Parse(time.RFC3339, afterStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid after parameter")
		}
		filter.After = &after
	}

	if beforeStr := c.QueryParam("before"); beforeStr != "" {
		before, err := time.Parse(time.RFC3339, beforeStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid before parameter")
		}
		filter.Before = &before
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		filter.Limit = limit
	}

	meetings, err := h.meetingService.List(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List meetings failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve meetings")
	}

	return c.JSON(http.StatusOK, meetings)
}

// AddAttachment handles uploading a meeting attachment
func (h *MeetingHandler) AddAttachment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid meeting ID")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A file is required")
	}

	upload, src, err := fileUploadFromHeader(header)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}
	defer src.Close()

	meeting, err := h.meetingService.AddAttachment(c.Request().Context(), id, upload)
	if err != nil {
		h.logger.Error("Add meeting attachment failed", "error", err, "meeting_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, meeting)
}

// RemoveAttachment handles detaching a file from a meeting
func (h *MeetingHandler) RemoveAttachment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid meeting ID")
	}

	objectID := c.Param("objectId")
	if objectID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid object ID")
	}

	meeting, err := h.meetingService.RemoveAttachment(c.Request().Context(), id, objectID)
	if err != nil {
		h.logger.Error("Remove meeting attachment failed", "error", err, "meeting_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, meeting)
}
