package user

import (
	"bitwise74/file-share/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetRedirect hands out the path captured before login, once
func GetRedirect(c *gin.Context, d *internal.Deps) {
	sessionID := c.MustGet("sessionID").(string)

	var next *string
	if p, ok := d.Gate.ConsumeIntent(sessionID); ok {
		next = &p
	}

	c.JSON(http.StatusOK, gin.H{"next": next})
}
