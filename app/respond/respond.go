// Package respond turns service errors into JSON responses
package respond

import (
	"bitwise74/devdoc-api/internal/apperr"
	"bitwise74/devdoc-api/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Verbose adds the underlying error to 500 responses. It is switched off in
// production.
var Verbose = true

var statuses = map[apperr.Kind]int{
	apperr.KindValidation:         http.StatusBadRequest,
	apperr.KindConflict:           http.StatusBadRequest,
	apperr.KindInvalidCredentials: http.StatusBadRequest,
	apperr.KindUnauthorized:       http.StatusUnauthorized,
	apperr.KindNotFound:           http.StatusNotFound,
}

// Error writes err as a JSON response. msg describes what failed and is only
// logged, for unexpected errors.
func Error(c *gin.Context, msg string, err error) {
	requestID := c.GetString("requestID")

	if e, ok := apperr.As(err); ok {
		if status, ok := statuses[e.Kind]; ok {
			zap.L().Debug(msg, zap.String("kind", e.Kind.String()), zap.Error(err), zap.String("requestID", requestID))

			c.AbortWithStatusJSON(status, gin.H{
				"error":     e.Message,
				"requestID": requestID,
			})
			return
		}
	}

	if middleware.IsBodyTooLarge(err) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     "Request body size exceeds limit",
			"requestID": requestID,
		})
		return
	}

	zap.L().Error(msg, zap.Error(err), zap.String("requestID", requestID))

	message := "Internal server error"
	if Verbose {
		message = err.Error()
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":     "Something went wrong!",
		"message":   message,
		"requestID": requestID,
	})
}

// BindJSON decodes the request body into obj. It writes the error response
// itself and returns false when the body can't be used.
func BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	if middleware.IsBodyTooLarge(err) {
		Error(c, "Request body too large", err)
		return false
	}

	zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", c.GetString("requestID")))

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":     "Malformed or invalid JSON request body",
		"requestID": c.GetString("requestID"),
	})
	return false
}

// Message writes {"message": msg} with status 200
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
