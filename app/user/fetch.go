package user

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserFetch returns the public fields of the authenticated user
func UserFetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	u, err := d.Users.Current(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, "Failed to fetch user", err)
		return
	}

	c.JSON(http.StatusOK, u)
}
