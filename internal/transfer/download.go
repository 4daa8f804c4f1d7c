package transfer

import (
	"bitwise74/file-share/internal/model"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const auditTimeout = 10 * time.Second

// Download is a staged copy ready to be streamed. The caller must Close it.
// The staging copy itself is removed on a timer whether or not Close is
// called.
type Download struct {
	File    *model.File
	Content afero.File
	Size    int64
}

func (d *Download) Read(p []byte) (int, error) {
	return d.Content.Read(p)
}

func (d *Download) Close() error {
	return d.Content.Close()
}

// Fetch stages the bytes of a file for the signed in viewer and writes an
// access log entry before handing them back. Anonymous callers are turned
// away before any storage or ledger work happens.
func (c *Controller) Fetch(ctx context.Context, sessionID, fileID string) (*Download, error) {
	viewer, ok := c.sessions.Current(sessionID)
	if !ok {
		c.metrics.Downloads.WithLabelValues("unauthorized").Inc()
		return nil, ErrUnauthorized
	}

	d, err := c.fetch(ctx, viewer, fileID)
	if err != nil {
		c.metrics.Downloads.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}

	c.metrics.Downloads.WithLabelValues("ok").Inc()
	c.metrics.DownloadBytes.Add(float64(d.Size))

	return d, nil
}

func (c *Controller) fetch(ctx context.Context, viewer model.Principal, fileID string) (*Download, error) {
	f, err := c.lookup(ctx, fileID)
	if err != nil {
		return nil, err
	}

	rc, err := c.blobs.Get(ctx, f.StorageKey)
	if err != nil {
		zap.L().Error("Failed to fetch file from storage", zap.String("fileID", f.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer rc.Close()

	tmp, p, err := c.staging.Create()
	if err != nil {
		zap.L().Error("Failed to create staging file", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	// The timer starts now and does not wait for the stream to finish
	c.scheduleRemoval(p)

	n, err := io.Copy(tmp, rc)
	if err == nil {
		_, err = tmp.Seek(0, io.SeekStart)
	}
	if err != nil {
		tmp.Close()
		zap.L().Error("Failed to stage file", zap.String("fileID", f.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	c.recordAccess(ctx, f.ID, viewer)

	return &Download{File: f, Content: tmp, Size: n}, nil
}

func (c *Controller) scheduleRemoval(p string) {
	c.scheduler.After(c.grace, "staging_cleanup", func() {
		if err := c.staging.Remove(p); err != nil {
			c.metrics.StagingFailed.Inc()
			zap.L().Error("Failed to remove staging file", zap.String("path", p), zap.Error(err))
			return
		}

		c.metrics.StagingRemoved.Inc()
	})
}

// recordAccess never fails the download. Writes are idempotent so a retry
// after an ambiguous failure cannot produce a duplicate entry.
func (c *Controller) recordAccess(ctx context.Context, fileID string, viewer model.Principal) {
	entry, err := c.ledger.NewAccessLog(fileID, viewer)
	if err != nil {
		c.metrics.AccessLogLost.Inc()
		zap.L().Error("Failed to create access log entry", zap.String("fileID", fileID), zap.Error(err))
		return
	}

	// A client hanging up mid-request must not cost us the entry
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	b := retry.WithMaxRetries(c.auditRetries, retry.NewExponential(50*time.Millisecond))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		if err := c.ledger.AppendAccessLog(ctx, entry); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		c.metrics.AccessLogLost.Inc()
		zap.L().Error("Failed to record file access",
			zap.String("fileID", fileID),
			zap.String("viewer", viewer.String()),
			zap.Error(err),
		)
	}
}
