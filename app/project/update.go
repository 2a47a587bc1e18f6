package project

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"bitwise74/devdoc-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ProjectUpdate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.ProjectPatch
	if !respond.BindJSON(c, &data) {
		return
	}

	p, err := d.Projects.Update(c.Request.Context(), userID, c.Param("id"), data)
	if err != nil {
		respond.Error(c, "Failed to update project", err)
		return
	}

	c.JSON(http.StatusOK, p)
}
