package project

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"bitwise74/devdoc-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ProjectCreate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.ProjectInput
	if !respond.BindJSON(c, &data) {
		return
	}

	p, err := d.Projects.Create(c.Request.Context(), userID, data)
	if err != nil {
		respond.Error(c, "Failed to create project", err)
		return
	}

	c.JSON(http.StatusCreated, p)
}
