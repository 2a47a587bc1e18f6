// Package snippet holds the handlers for a project's code snippets
package snippet

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"bitwise74/devdoc-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SnippetAdd(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.SnippetInput
	if !respond.BindJSON(c, &data) {
		return
	}

	sn, err := d.Projects.AddSnippet(c.Request.Context(), userID, c.Param("id"), data)
	if err != nil {
		respond.Error(c, "Failed to add snippet", err)
		return
	}

	c.JSON(http.StatusOK, sn)
}

func SnippetUpdate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.SnippetPatch
	if !respond.BindJSON(c, &data) {
		return
	}

	sn, err := d.Projects.UpdateSnippet(c.Request.Context(), userID, c.Param("id"), c.Param("snippetId"), data)
	if err != nil {
		respond.Error(c, "Failed to update snippet", err)
		return
	}

	c.JSON(http.StatusOK, sn)
}

func SnippetDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if err := d.Projects.DeleteSnippet(c.Request.Context(), userID, c.Param("id"), c.Param("snippetId")); err != nil {
		respond.Error(c, "Failed to delete snippet", err)
		return
	}

	respond.Message(c, "Snippet deleted successfully")
}
