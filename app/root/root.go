package root

import (
	"bitwise74/file-share/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

func Index(c *gin.Context, d *internal.Deps) {
	p, ok := d.Gate.Current(c.MustGet("sessionID").(string))

	res := gin.H{
		"service":  "file-share",
		"loggedIn": ok,
	}
	if ok {
		res["email"] = p
	}

	c.JSON(http.StatusOK, res)
}

// Login tells the client how to sign in. The identity provider runs in the
// browser and hands us its ID token through /setuser.
func Login(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "Sign in with your identity provider, then POST the ID token to /setuser",
		"setUser":  "/setuser",
		"redirect": "/get_redirect",
	})
}

func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
