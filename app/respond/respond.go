// Package respond maps controller errors to HTTP responses
package respond

import (
	"bitwise74/file-share/internal/transfer"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const LoginPath = "/login"

// Fail answers with the status that matches err. Unknown and dependency
// failures get generic as their message, the details only go to the log.
func Fail(c *gin.Context, err error, generic string) {
	requestID := c.GetString("requestID")

	switch {
	case errors.Is(err, transfer.ErrUnauthorized):
		c.Redirect(http.StatusFound, LoginPath)
	case errors.Is(err, transfer.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "You are not allowed to view this page",
			"requestID": requestID,
		})
	case errors.Is(err, transfer.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "File not found",
			"requestID": requestID,
		})
	case errors.Is(err, transfer.ErrInvalidUpload):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     generic,
			"requestID": requestID,
		})

		zap.L().Error("Request failed", zap.String("requestID", requestID), zap.Error(err))
	}
}
