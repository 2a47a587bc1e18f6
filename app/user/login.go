package user

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

func UserLogin(c *gin.Context, d *internal.Deps) {
	var data credentials
	if !respond.BindJSON(c, &data) {
		return
	}

	res, err := d.Users.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		respond.Error(c, "Failed to log in user", err)
		return
	}

	c.JSON(http.StatusOK, res)
}
