package file

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"

	"github.com/gin-gonic/gin"
)

func FileDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if err := d.Files.Delete(c.Request.Context(), userID, c.Param("id"), c.Param("fileId")); err != nil {
		respond.Error(c, "Failed to delete file", err)
		return
	}

	respond.Message(c, "File deleted successfully")
}
