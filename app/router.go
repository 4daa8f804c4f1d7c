// Package app contains the HTTP surface of the service
package app

import (
	"bitwise74/file-share/app/admin"
	"bitwise74/file-share/app/file"
	"bitwise74/file-share/app/root"
	"bitwise74/file-share/app/user"
	"bitwise74/file-share/internal"
	"bitwise74/file-share/pkg/middleware"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Multipart parts above this spill to disk
const maxMultipartMemory = 8 << 20

func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("principal"); v != "" {
					fields = append(fields, zap.String("principal", v))
				}

				return fields
			},
		}),
		middleware.RequestDuration(d.Metrics.RequestDurations),
	)

	if origins := viper.GetStringSlice("host.cors_origins"); len(origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = maxMultipartMemory

	// HEAD|GET /heartbeat		-> Used to check if the server is alive
	router.HEAD("/heartbeat", root.Heartbeat)
	router.GET("/heartbeat", root.Heartbeat)

	// GET /metrics			-> Prometheus metrics
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	m := router.Group("", d.RateLimiter.Handler(), d.Cookie.Handler(), principal(d))
	{
		// GET /			-> Landing page
		m.GET("/", func(c *gin.Context) { root.Index(c, d) })

		// GET /login			-> Login page
		m.GET("/login", root.Login)

		// POST /setuser		-> Verifies an ID token and signs the session in
		m.POST("/setuser", middleware.BodySizeLimiter(64<<10), func(c *gin.Context) { user.SetUser(c, d) })

		// GET /get_redirect		-> Returns the page requested before login, once
		m.GET("/get_redirect", func(c *gin.Context) { user.GetRedirect(c, d) })

		// GET /logout			-> Signs the session out
		m.GET("/logout", func(c *gin.Context) { user.Logout(c, d) })

		// GET /dashboard		-> Upload form
		m.GET("/dashboard", func(c *gin.Context) { file.Dashboard(c, d) })

		// POST /dashboard		-> Uploads a file and returns its share link
		m.POST("/dashboard", middleware.BodySizeLimiter(d.MaxUploadSize+maxMultipartOverhead), func(c *gin.Context) { file.Upload(c, d) })

		// GET /download/:id		-> Download confirmation
		m.GET("/download/:id", func(c *gin.Context) { file.Confirm(c, d) })

		// POST /download/:id		-> Streams the file and logs the access
		m.POST("/download/:id", func(c *gin.Context) { file.Download(c, d) })
	}

	ad := m.Group("/admin")
	{
		// GET /admin/uploads		-> Every upload, newest first
		ad.GET("/uploads", func(c *gin.Context) { admin.Uploads(c, d) })

		// GET /admin/downloads	-> Every download, newest first
		ad.GET("/downloads", func(c *gin.Context) { admin.Downloads(c, d) })
	}

	return router
}

// Room for multipart boundaries and headers on top of the file itself
const maxMultipartOverhead = 1 << 20

func principal(d *internal.Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := d.Gate.Current(c.GetString("sessionID")); ok {
			c.Set("principal", p.String())
		}
		c.Next()
	}
}
