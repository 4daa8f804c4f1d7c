// Package transfer orchestrates uploads and downloads: it checks who is asking,
// moves bytes through the blob store and keeps the ledger in sync
package transfer

import (
	"bitwise74/file-share/internal/blob"
	"bitwise74/file-share/internal/ledger"
	"bitwise74/file-share/internal/metrics"
	"bitwise74/file-share/internal/model"
	"bitwise74/file-share/internal/service"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultGracePeriod  = 5 * time.Second
	defaultAuditRetries = 3
	cleanupTimeout      = 30 * time.Second
)

// Sessions is the part of the session gate the controller needs
type Sessions interface {
	Current(id string) (model.Principal, bool)
	CaptureIntent(id, path string)
}

// Ledger is the persistence the controller needs. Lookups of unknown ids must
// fail with ledger.ErrNotFound.
type Ledger interface {
	CreateFileRecord(ctx context.Context, displayName, storageKey string, owner model.Principal, size int64, contentType string) (*model.File, error)
	GetFileRecord(ctx context.Context, id string) (*model.File, error)
	ListFileRecords(ctx context.Context) ([]model.File, error)
	NewAccessLog(fileID string, viewer model.Principal) (*model.AccessLog, error)
	AppendAccessLog(ctx context.Context, entry *model.AccessLog) error
	ListAccessLogs(ctx context.Context) ([]model.AccessLog, error)
}

type Options struct {
	Sessions  Sessions
	Ledger    Ledger
	Blobs     blob.Store
	Staging   *service.Staging
	Scheduler *service.Scheduler
	Metrics   *metrics.Metrics

	// IsAdmin decides who may see the administrative listings. Nil denies
	// everyone.
	IsAdmin func(model.Principal) bool

	// BaseURL is prepended to share links, e.g. "https://share.example.com"
	BaseURL string

	// GracePeriod is how long a staging copy is kept after a download starts
	GracePeriod time.Duration

	// AuditRetries is how many times a failed access log write is retried
	AuditRetries uint64
}

type Controller struct {
	sessions  Sessions
	ledger    Ledger
	blobs     blob.Store
	staging   *service.Staging
	scheduler *service.Scheduler
	metrics   *metrics.Metrics

	isAdmin      func(model.Principal) bool
	baseURL      string
	grace        time.Duration
	auditRetries uint64
}

func New(o Options) *Controller {
	c := &Controller{
		sessions:     o.Sessions,
		ledger:       o.Ledger,
		blobs:        o.Blobs,
		staging:      o.Staging,
		scheduler:    o.Scheduler,
		metrics:      o.Metrics,
		isAdmin:      o.IsAdmin,
		baseURL:      strings.TrimRight(o.BaseURL, "/"),
		grace:        o.GracePeriod,
		auditRetries: o.AuditRetries,
	}

	if c.metrics == nil {
		c.metrics = metrics.New()
	}
	if c.isAdmin == nil {
		c.isAdmin = func(model.Principal) bool { return false }
	}
	if c.grace <= 0 {
		c.grace = defaultGracePeriod
	}
	if c.auditRetries == 0 {
		c.auditRetries = defaultAuditRetries
	}

	return c
}

// AdminList returns an IsAdmin predicate matching any of the given emails,
// ignoring case
func AdminList(emails ...string) func(model.Principal) bool {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}

	return func(p model.Principal) bool {
		_, ok := set[strings.ToLower(p.String())]
		return ok
	}
}

// Link returns the shareable link of a file
func (c *Controller) Link(id string) string {
	return c.baseURL + "/download/" + url.PathEscape(id)
}

func (c *Controller) lookup(ctx context.Context, id string) (*model.File, error) {
	f, err := c.ledger.GetFileRecord(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return f, nil
}

// Confirm resolves a file for the confirmation step of a download. It never
// touches the blob store or the access log. Anonymous callers get their
// requested path captured so they can be sent back after logging in.
func (c *Controller) Confirm(ctx context.Context, sessionID, fileID, requestPath string) (*model.File, error) {
	if _, ok := c.sessions.Current(sessionID); !ok {
		c.sessions.CaptureIntent(sessionID, requestPath)
		return nil, ErrUnauthorized
	}

	return c.lookup(ctx, fileID)
}

// discardBlob removes bytes that never got a ledger entry. Best effort.
func (c *Controller) discardBlob(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := c.blobs.Delete(ctx, key); err != nil {
		zap.L().Error("Failed to cleanup after failed upload", zap.String("key", key), zap.Error(err))
		return
	}

	zap.L().Debug("Cleaned up after failed upload", zap.String("key", key))
}
