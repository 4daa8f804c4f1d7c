// Package file contains the upload and download endpoints
package file

import (
	"bitwise74/file-share/app/respond"
	"bitwise74/file-share/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Dashboard describes the upload form for a signed in user
func Dashboard(c *gin.Context, d *internal.Deps) {
	p, ok := d.Gate.Current(c.MustGet("sessionID").(string))
	if !ok {
		c.Redirect(http.StatusFound, respond.LoginPath)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":         p,
		"field":         "file",
		"maxUploadSize": d.MaxUploadSize,
	})
}
