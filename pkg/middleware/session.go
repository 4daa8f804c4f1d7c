package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookie hands every browser an opaque session id. The id carries no
// state of its own, it only keys server side session storage.
type SessionCookie struct {
	Name   string
	MaxAge time.Duration
	Secure bool
	NewID  func() (string, error)
}

// Set writes the cookie and makes id the session of the current request
func (s *SessionCookie) Set(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, id, int(s.MaxAge.Seconds()), "/", "", s.Secure, true)
	c.Set("sessionID", id)
}

func (s *SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

// Handler makes sure sessionID is set for every request, issuing a new cookie
// when the browser does not present one
func (s *SessionCookie) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := c.Cookie(s.Name); err == nil && id != "" {
			c.Set("sessionID", id)
			c.Next()
			return
		}

		id, err := s.NewID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		s.Set(c, id)
		c.Next()
	}
}
