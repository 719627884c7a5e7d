package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/ports"
)

// notFoundErrors are domain errors that map to a 404 response.
var notFoundErrors = []error{
	entities.ErrWorkItemNotFound,
	entities.ErrMeetingNotFound,
	entities.ErrTimelineEventNotFound,
	entities.ErrResourceNotFound,
	entities.ErrTimerNotFound,
	entities.ErrUserNotFound,
	entities.ErrObjectNotFound,
}

// httpError maps domain errors onto HTTP status codes. Anything
// unrecognized becomes a 500 with a generic message.
func httpError(err error) *echo.HTTPError {
	for _, notFound := range notFoundErrors {
		if errors.Is(err, notFound) {
			return echo.NewHTTPError(http.StatusNotFound, notFound.Error())
		}
	}

	switch {
	case errors.Is(err, entities.ErrObjectTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, entities.ErrFileRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// fileUploadFromHeader opens a multipart file header as a service upload.
// The caller must close the returned file.
func fileUploadFromHeader(header *multipart.FileHeader) (ports.FileUpload, multipart.File, error) {
	src, err := header.Open()
	if err != nil {
		return ports.FileUpload{}, nil, err
	}

	return ports.FileUpload{
		FileName: header.Filename,
		Size:     header.Size,
		Reader:   src,
	}, src, nil
}
