// Package link holds the handlers for a project's reference links
package link

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"bitwise74/devdoc-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func LinkAdd(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.LinkInput
	if !respond.BindJSON(c, &data) {
		return
	}

	l, err := d.Projects.AddLink(c.Request.Context(), userID, c.Param("id"), data)
	if err != nil {
		respond.Error(c, "Failed to add link", err)
		return
	}

	c.JSON(http.StatusOK, l)
}

func LinkUpdate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.LinkPatch
	if !respond.BindJSON(c, &data) {
		return
	}

	l, err := d.Projects.UpdateLink(c.Request.Context(), userID, c.Param("id"), c.Param("linkId"), data)
	if err != nil {
		respond.Error(c, "Failed to update link", err)
		return
	}

	c.JSON(http.StatusOK, l)
}

func LinkDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if err := d.Projects.DeleteLink(c.Request.Context(), userID, c.Param("id"), c.Param("linkId")); err != nil {
		respond.Error(c, "Failed to delete link", err)
		return
	}

	respond.Message(c, "Link deleted successfully")
}
