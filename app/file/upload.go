// Package file holds the handlers for uploaded project files
package file

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"bitwise74/devdoc-api/internal/apperr"
	"bitwise74/devdoc-api/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			respond.Error(c, "No file in upload", apperr.Validation("No file uploaded"))
			return
		}

		respond.Error(c, "Failed to read multipart form", err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respond.Error(c, "Failed to open multipart file", err)
		return
	}
	defer f.Close()

	rec, err := d.Files.Store(c.Request.Context(), userID, c.Param("id"), service.Upload{
		Name: fh.Filename,
		Size: fh.Size,
		Body: f,
	})
	if err != nil {
		respond.Error(c, "Failed to upload file", err)
		return
	}

	if d.Metrics != nil {
		d.Metrics.ObserveUpload(rec.Size)
	}

	zap.L().Debug("File uploaded", zap.String("file", rec.Filename), zap.Int64("size", rec.Size), zap.String("requestID", requestID))

	c.JSON(http.StatusOK, rec)
}
