package project

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const (
	qrDefaultSize = 256
	qrMinSize     = 128
	qrMaxSize     = 1024
)

func ProjectShare(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	url, err := d.Projects.ShareURL(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respond.Error(c, "Failed to build share link", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ProjectShareQR renders the share link as a PNG QR code
func ProjectShareQR(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	url, err := d.Projects.ShareURL(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respond.Error(c, "Failed to build share link", err)
		return
	}

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize(c.Query("size")))
	if err != nil {
		respond.Error(c, "Failed to encode QR code", fmt.Errorf("failed to encode QR code, %w", err))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func qrSize(raw string) int {
	size, err := strconv.Atoi(raw)
	if err != nil {
		return qrDefaultSize
	}

	return min(max(size, qrMinSize), qrMaxSize)
}
