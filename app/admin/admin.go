// Package admin contains the audit listings
package admin

import (
	"bitwise74/file-share/app/respond"
	"bitwise74/file-share/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

const listFailed = "Failed to load the listing. Please try again."

func Uploads(c *gin.Context, d *internal.Deps) {
	list, err := d.Transfer.ListUploads(c.Request.Context(), c.MustGet("sessionID").(string))
	if err != nil {
		respond.Fail(c, err, listFailed)
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploads": list})
}

func Downloads(c *gin.Context, d *internal.Deps) {
	list, err := d.Transfer.ListDownloads(c.Request.Context(), c.MustGet("sessionID").(string))
	if err != nil {
		respond.Fail(c, err, listFailed)
		return
	}

	c.JSON(http.StatusOK, gin.H{"downloads": list})
}
