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

// WorkItemHandler handles kanban card requests
type WorkItemHandler struct {
	workItemService *services.WorkItemService
	logger          *logger.Logger
}

// NewWorkItemHandler creates a new work item handler
func NewWorkItemHandler(workItemService *services.WorkItemService, logger *logger.Logger) *WorkItemHandler {
	return &WorkItemHandler{
		workItemService: workItemService,
		logger:          logger,
	}
}

// CreateWorkItem handles card creation
func (h *WorkItemHandler) CreateWorkItem(c echo.Context) error {
	var req ports.CreateWorkItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.workItemService.Create(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create work item failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, item)
}

// GetWorkItem handles getting a card by ID
func (h *WorkItemHandler) GetWorkItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid work item ID")
	}

	item, err := h.workItemService.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, item)
}

// UpdateWorkItem handles partial card updates
func (h *WorkItemHandler) UpdateWorkItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid work item ID")
	}

	var req ports.UpdateWorkItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.workItemService.Update(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update work item failed", "error", err, "work_item_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteWorkItem handles card deletion
func (h *WorkItemHandler) DeleteWorkItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid work item ID")
	}

	if err := h.workItemService.Delete(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete work item failed", "error", err, "work_item_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Work item deleted successfully"})
}

// ListWorkItems handles listing cards with optional filters
func (h *WorkItemHandler) ListWorkItems(c echo.Context) error {
	filter := ports.WorkItemFilter{}

	if status := c.QueryParam("status"); status != "" {
		s := entities.Status(status)
		if !s.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status parameter")
		}
		filter.Status = &s
	}

	if assignee := c.QueryParam("assignee"); assignee != "" {
		filter.Assignee = &assignee
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		filter.Limit = limit
	}

	items, err := h.workItemService.List(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List work items failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve work items")
	}

	return c.JSON(http.StatusOK, items)
}

// GetBoard handles getting all cards grouped into status columns
func (h *WorkItemHandler) GetBoard(c echo.Context) error {
	board, err := h.workItemService.Board(c.Request().Context())
	if err != nil {
		h.logger.Error("Get board failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve board")
	}

	return c.JSON(http.StatusOK, board)
}

// ReplaceImage handles uploading a card image
func (h *WorkItemHandler) ReplaceImage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid work item ID")
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

	item, err := h.workItemService.ReplaceImage(c.Request().Context(), id, upload)
	if err != nil {
		h.logger.Error("Replace work item image failed", "error", err, "work_item_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, item)
}

// RemoveImage handles clearing a card image
func (h *WorkItemHandler) RemoveImage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid work item ID")
	}

	item, err := h.workItemService.RemoveImage(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Remove work item image failed", "error", err, "work_item_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, item)
}
