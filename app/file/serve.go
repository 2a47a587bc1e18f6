package file

import (
	"bitwise74/devdoc-api/internal"
	"bitwise74/devdoc-api/internal/storage"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// FileServe hands out stored files by their storage name. Local storage is
// served in-process, object storage gets a redirect to its public URL.
func FileServe(c *gin.Context, d *internal.Deps) {
	name := c.Param("filename")
	if name == "" || strings.HasPrefix(name, ".") {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	switch s := d.Storage.(type) {
	case storage.FileSystem:
		c.Header("X-Content-Type-Options", "nosniff")
		if storage.ForceDownload(name) {
			c.Header("Content-Disposition", "attachment")
		}
		c.FileFromFS(name, s.FS())
	case storage.Redirector:
		c.Redirect(http.StatusFound, s.URL(name))
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
	}
}
