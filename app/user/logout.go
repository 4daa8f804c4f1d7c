package user

import (
	"bitwise74/file-share/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

func Logout(c *gin.Context, d *internal.Deps) {
	d.Gate.Clear(c.MustGet("sessionID").(string))
	d.Cookie.Clear(c)

	c.Redirect(http.StatusFound, "/")
}
