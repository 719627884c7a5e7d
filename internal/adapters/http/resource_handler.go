package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/collabrixo/core/internal/application/services"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// ResourceHandler handles shared file requests. Create and update accept
// multipart forms so metadata and the file arrive in one request.
type ResourceHandler struct {
	resourceService *services.ResourceService
	logger          *logger.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resourceService *services.ResourceService, logger *logger.Logger) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
		logger:          logger,
	}
}

// CreateResource handles resource creation. The file part is mandatory.
func (h *ResourceHandler) CreateResource(c echo.Context) error {
	req := ports.CreateResourceRequest{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		UploadedBy:  c.FormValue("uploaded_by"),
	}
	if url := c.FormValue("url"); url != "" {
		req.URL = &url
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
	req.File = &upload

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resource, err := h.resourceService.Create(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create resource failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, resource)
}

// GetResource handles getting a resource by ID
func (h *ResourceHandler) GetResource(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid resource ID")
	}

	resource, err := h.resourceService.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, resource)
}

// UpdateResource handles partial resource updates with an optional
// replacement file.
func (h *ResourceHandler) UpdateResource(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid resource ID")
	}

	req := ports.UpdateResourceRequest{}
	if name := c.FormValue("name"); name != "" {
		req.Name = &name
	}
	if description := c.FormValue("description"); description != "" {
		req.Description = &description
	}
	if url := c.FormValue("url"); url != "" {
		req.URL = &url
	}

	if header, err := c.FormFile("file"); err == nil {
		upload, src, err := fileUploadFromHeader(header)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
		}
		defer src.Close()
		req.File = &upload
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resource, err := h.resourceService.Update(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update resource failed", "error", err, "resource_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, resource)
}

// DeleteResource handles resource deletion
func (h *ResourceHandler) DeleteResource(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid resource ID")
	}

	if err := h.resourceService.Delete(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete resource failed", "error", err, "resource_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Resource deleted successfully"})
}

// ListResources handles listing resources with optional filters
func (h *ResourceHandler) ListResources(c echo.Context) error {
	filter := ports.ResourceFilter{}

	if uploadedBy := c.QueryParam("uploaded_by"); uploadedBy != "" {
		filter.UploadedBy = &uploadedBy
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		filter.Limit = limit
	}

	resources, err := h.resourceService.List(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List resources failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve resources")
	}

	return c.JSON(http.StatusOK, resources)
}
