package user

import (
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	var data credentials
	if !respond.BindJSON(c, &data) {
		return
	}

	res, err := d.Users.Register(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		respond.Error(c, "Failed to register user", err)
		return
	}

	zap.L().Info("User registered", zap.String("userID", res.User.ID), zap.String("requestID", c.GetString("requestID")))

	c.JSON(http.StatusCreated, res)
}
