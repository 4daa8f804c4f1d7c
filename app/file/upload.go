package file

import (
	"bitwise74/file-share/app/respond"
	"bitwise74/file-share/internal"
	"bitwise74/file-share/internal/transfer"
	"bitwise74/file-share/pkg/middleware"
	"bitwise74/file-share/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const uploadFailed = "Upload failed. Please try again."

func Upload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	sessionID := c.MustGet("sessionID").(string)

	// Don't bother parsing a body nobody is allowed to send
	if _, ok := d.Gate.Current(sessionID); !ok {
		c.Redirect(http.StatusFound, respond.LoginPath)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "Request body size exceeds limit",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	if err := validators.FileValidator(fh, d.MaxUploadSize); err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, validators.ErrFileTooLarge) {
			code = http.StatusRequestEntityTooLarge
		}

		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     uploadFailed,
			"requestID": requestID,
		})

		zap.L().Error("Failed to open multipart file", zap.String("requestID", requestID), zap.Error(err))
		return
	}
	defer f.Close()

	res, err := d.Transfer.Upload(c.Request.Context(), sessionID, &transfer.IncomingFile{
		Name: fh.Filename,
		Size: fh.Size,
		Body: f,
	})
	if err != nil {
		respond.Fail(c, err, uploadFailed)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          res.File.ID,
		"filename":    res.File.DisplayName,
		"size":        res.File.Size,
		"contentType": res.File.ContentType,
		"link":        res.Link,
	})
}
