package transfer

import (
	"bitwise74/file-share/internal/model"
	"context"
	"errors"
	"fmt"
	"time"
)

// DeletedPlaceholder is shown for access log entries whose file is gone
const DeletedPlaceholder = "[Deleted]"

type UploadEntry struct {
	ID        string          `json:"id"`
	Filename  string          `json:"filename"`
	Owner     model.Principal `json:"owner"`
	Size      int64           `json:"size"`
	Timestamp time.Time       `json:"timestamp"`
	Link      string          `json:"link"`
}

type DownloadEntry struct {
	FileID    string          `json:"fileId"`
	Filename  string          `json:"filename"`
	Viewer    model.Principal `json:"viewer"`
	Timestamp time.Time       `json:"timestamp"`
}

func (c *Controller) requireAdmin(sessionID string) error {
	p, ok := c.sessions.Current(sessionID)
	if !ok {
		return ErrUnauthorized
	}
	if !c.isAdmin(p) {
		return ErrForbidden
	}

	return nil
}

// ListUploads returns every file record, newest first
func (c *Controller) ListUploads(ctx context.Context, sessionID string) ([]UploadEntry, error) {
	if err := c.requireAdmin(sessionID); err != nil {
		return nil, err
	}

	files, err := c.ledger.ListFileRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	out := make([]UploadEntry, 0, len(files))
	for _, f := range files {
		out = append(out, UploadEntry{
			ID:        f.ID,
			Filename:  f.DisplayName,
			Owner:     f.Owner,
			Size:      f.Size,
			Timestamp: f.CreatedAt,
			Link:      c.Link(f.ID),
		})
	}

	return out, nil
}

// ListDownloads returns the access log, newest first, with file names resolved
func (c *Controller) ListDownloads(ctx context.Context, sessionID string) ([]DownloadEntry, error) {
	if err := c.requireAdmin(sessionID); err != nil {
		return nil, err
	}

	logs, err := c.ledger.ListAccessLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	names := make(map[string]string)
	out := make([]DownloadEntry, 0, len(logs))

	for _, l := range logs {
		name, ok := names[l.FileID]
		if !ok {
			f, err := c.lookup(ctx, l.FileID)
			switch {
			case err == nil:
				name = f.DisplayName
			case errors.Is(err, ErrNotFound):
				name = DeletedPlaceholder
			default:
				return nil, err
			}
			names[l.FileID] = name
		}

		out = append(out, DownloadEntry{
			FileID:    l.FileID,
			Filename:  name,
			Viewer:    l.Viewer,
			Timestamp: l.Timestamp,
		})
	}

	return out, nil
}
