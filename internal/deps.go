package internal

import (
	"bitwise74/file-share/internal/blob"
	"bitwise74/file-share/internal/ledger"
	"bitwise74/file-share/internal/metrics"
	"bitwise74/file-share/internal/service"
	"bitwise74/file-share/internal/session"
	"bitwise74/file-share/internal/transfer"
	"bitwise74/file-share/pkg/middleware"
	"time"

	"gorm.io/gorm"
)

type Config struct {
	SessionTTL    time.Duration
	CookieName    string
	SecureCookies bool

	BaseURL     string
	AdminEmails []string

	GracePeriod   time.Duration
	MaxUploadSize int64
	RateLimit     int
}

type Deps struct {
	DB          *gorm.DB
	Gate        *session.Gate
	Ledger      *ledger.Ledger
	Blobs       blob.Store
	Staging     *service.Staging
	Scheduler   *service.Scheduler
	Metrics     *metrics.Metrics
	Transfer    *transfer.Controller
	Cookie      *middleware.SessionCookie
	RateLimiter *middleware.RateLimiter

	MaxUploadSize int64
}

// NewDeps wires everything on top of the given backends. The scheduler is
// not started, call Start for that.
func NewDeps(db *gorm.DB, v session.Verifier, blobs blob.Store, staging *service.Staging, cfg Config) *Deps {
	d := &Deps{
		DB:            db,
		Gate:          session.NewGate(v, cfg.SessionTTL),
		Ledger:        ledger.New(db),
		Blobs:         blobs,
		Staging:       staging,
		Scheduler:     service.NewScheduler(),
		Metrics:       metrics.New(),
		MaxUploadSize: cfg.MaxUploadSize,
	}

	d.Cookie = &middleware.SessionCookie{
		Name:   cfg.CookieName,
		MaxAge: cfg.SessionTTL,
		Secure: cfg.SecureCookies,
		NewID:  d.Gate.NewID,
	}

	d.RateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit,
		Burst:             cfg.RateLimit * 2,
	})

	d.Transfer = transfer.New(transfer.Options{
		Sessions:    d.Gate,
		Ledger:      d.Ledger,
		Blobs:       blobs,
		Staging:     staging,
		Scheduler:   d.Scheduler,
		Metrics:     d.Metrics,
		IsAdmin:     transfer.AdminList(cfg.AdminEmails...),
		BaseURL:     cfg.BaseURL,
		GracePeriod: cfg.GracePeriod,
	})

	return d
}

func (d *Deps) Start() {
	d.Scheduler.Start()
}

// Close runs every pending staging cleanup and releases session storage
func (d *Deps) Close() error {
	d.Scheduler.Stop()
	return d.Gate.Close()
}
