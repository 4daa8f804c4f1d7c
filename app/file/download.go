package file

import (
	"bitwise74/file-share/app/respond"
	"bitwise74/file-share/internal"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

const downloadFailed = "Download failed. Please try again."

// Confirm shows what is about to be downloaded. Nothing is fetched or logged
// here, the bytes only flow on POST.
func Confirm(c *gin.Context, d *internal.Deps) {
	sessionID := c.MustGet("sessionID").(string)

	f, err := d.Transfer.Confirm(c.Request.Context(), sessionID, c.Param("id"), c.Request.URL.Path)
	if err != nil {
		respond.Fail(c, err, downloadFailed)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          f.ID,
		"filename":    f.DisplayName,
		"owner":       f.Owner,
		"size":        f.Size,
		"contentType": f.ContentType,
		"uploadedAt":  f.CreatedAt,
	})
}

func Download(c *gin.Context, d *internal.Deps) {
	sessionID := c.MustGet("sessionID").(string)

	dl, err := d.Transfer.Fetch(c.Request.Context(), sessionID, c.Param("id"))
	if err != nil {
		respond.Fail(c, err, downloadFailed)
		return
	}
	defer dl.Close()

	contentType := dl.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, dl.Size, contentType, dl, map[string]string{
		"Content-Disposition":    mime.FormatMediaType("attachment", map[string]string{"filename": dl.File.DisplayName}),
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "no-store",
	})
}
