package project

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type tagBody struct {
	Tag string `json:"tag"`
}

func ProjectTagAdd(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data tagBody
	if !respond.BindJSON(c, &data) {
		return
	}

	p, err := d.Projects.AddTag(c.Request.Context(), userID, c.Param("id"), data.Tag)
	if err != nil {
		respond.Error(c, "Failed to add tag", err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func ProjectTagRemove(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	p, err := d.Projects.RemoveTag(c.Request.Context(), userID, c.Param("id"), c.Param("tag"))
	if err != nil {
		respond.Error(c, "Failed to remove tag", err)
		return
	}

	c.JSON(http.StatusOK, p)
}
