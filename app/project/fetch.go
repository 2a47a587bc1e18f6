package project

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ProjectFetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	p, err := d.Projects.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respond.Error(c, "Failed to fetch project", err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// ProjectPublic serves the read-only share view. It needs no token.
func ProjectPublic(c *gin.Context, d *internal.Deps) {
	p, err := d.Projects.Public(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, "Failed to fetch public project", err)
		return
	}

	c.JSON(http.StatusOK, p)
}
