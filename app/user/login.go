package user

import (
	"bitwise74/file-share/internal"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type setUserBody struct {
	Token string `json:"token" form:"token"`
}

// SetUser verifies an identity token and signs the session in. The session
// id is rotated on every login.
func SetUser(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	sessionID := c.MustGet("sessionID").(string)

	var body setUserBody
	if err := c.ShouldBind(&body); err != nil || body.Token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Missing identity token",
			"requestID": requestID,
		})
		return
	}

	p, err := d.Gate.Verify(c.Request.Context(), body.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Login failed, your sign in token is invalid or expired",
			"requestID": requestID,
		})
		return
	}

	newID, err := d.Gate.Rotate(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to rotate session", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	d.Gate.Establish(newID, p)
	d.Cookie.Set(c, newID)

	zap.L().Debug("User signed in", zap.String("requestID", requestID), zap.String("principal", p.String()))

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"email":  p,
	})
}
