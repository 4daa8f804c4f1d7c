package transfer

import (
	"bitwise74/file-share/internal/model"
	"bitwise74/file-share/pkg/validators"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Enough for mimetype to recognise every format it knows about
const sniffLen = 3072

type IncomingFile struct {
	Name string
	// Size is the announced length of Body, -1 if unknown
	Size int64
	Body io.Reader
}

type UploadResult struct {
	File *model.File
	Link string
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func newStorageKey() string {
	return "files/" + uuid.NewString()
}

// Upload stores the bytes under a fresh storage key and records them in the
// ledger. Either both happen or, as far as the ledger is concerned, neither
// does.
func (c *Controller) Upload(ctx context.Context, sessionID string, in *IncomingFile) (*UploadResult, error) {
	owner, ok := c.sessions.Current(sessionID)
	if !ok {
		c.metrics.Uploads.WithLabelValues("unauthorized").Inc()
		return nil, ErrUnauthorized
	}

	res, err := c.upload(ctx, owner, in)
	if err != nil {
		c.metrics.Uploads.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}

	c.metrics.Uploads.WithLabelValues("ok").Inc()
	c.metrics.UploadBytes.Add(float64(res.File.Size))

	return res, nil
}

func (c *Controller) upload(ctx context.Context, owner model.Principal, in *IncomingFile) (*UploadResult, error) {
	if in == nil || in.Body == nil {
		return nil, fmt.Errorf("%w: no file provided", ErrInvalidUpload)
	}
	if in.Size == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}

	name, err := validators.SanitizeFilename(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpload, err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to read file, %w", ErrInvalidUpload, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}

	head = head[:n]
	contentType := mimetype.Detect(head).String()

	body := &countingReader{r: io.MultiReader(bytes.NewReader(head), in.Body)}
	key := newStorageKey()

	if err := c.blobs.Put(ctx, key, body, in.Size, contentType); err != nil {
		zap.L().Error("Failed to store file", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	f, err := c.ledger.CreateFileRecord(ctx, name, key, owner, body.n, contentType)
	if err != nil {
		zap.L().Error("Failed to record upload", zap.String("key", key), zap.Error(err))
		c.discardBlob(key)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	zap.L().Debug("File uploaded",
		zap.String("fileID", f.ID),
		zap.String("owner", owner.String()),
		zap.Int64("size", f.Size),
		zap.String("contentType", contentType),
	)

	return &UploadResult{File: f, Link: c.Link(f.ID)}, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidUpload):
		return "invalid"
	case errors.Is(err, ErrStorage):
		return "storage_error"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	default:
		return "error"
	}
}
