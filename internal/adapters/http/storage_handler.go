package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// StorageHandler serves stored objects back to clients
type StorageHandler struct {
	objects ports.ObjectStore
	logger  *logger.Logger
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(objects ports.ObjectStore, logger *logger.Logger) *StorageHandler {
	return &StorageHandler{
		objects: objects,
		logger:  logger,
	}
}

// ViewObject streams a stored object inline
func (h *StorageHandler) ViewObject(c echo.Context) error {
	bucket := c.Param("bucket")
	objectID := c.Param("id")

	rc, info, err := h.objects.Open(c.Request().Context(), bucket, objectID)
	if err != nil {
		return httpError(err)
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+info.FileName+`"`)
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, rc)
}
