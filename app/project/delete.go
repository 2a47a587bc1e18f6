package project

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"

	"github.com/gin-gonic/gin"
)

func ProjectDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if err := d.Projects.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respond.Error(c, "Failed to delete project", err)
		return
	}

	respond.Message(c, "Project deleted successfully")
}
