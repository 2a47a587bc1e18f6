// Package project holds the handlers for projects and their tags
package project

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"bitwise74/devdoc-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ProjectList(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	projects, err := d.Projects.List(c.Request.Context(), userID, service.ListOptions{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
		Tag:    c.Query("tag"),
	})
	if err != nil {
		respond.Error(c, "Failed to fetch projects", err)
		return
	}

	c.JSON(http.StatusOK, projects)
}
