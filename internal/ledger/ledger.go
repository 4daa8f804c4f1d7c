// Package ledger records file ownership, storage location and access history
package ledger

import (
	"bitwise74/file-share/internal/model"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const idSize = 21

var (
	ErrNotFound    = errors.New("record not found")
	ErrPersistence = errors.New("persistence failure")
)

type Ledger struct {
	db  *gorm.DB
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// stamp returns a UTC timestamp truncated to what postgres can store, strictly
// later than any previous stamp handed out by this ledger
func (l *Ledger) stamp() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now().UTC().Truncate(time.Microsecond)
	if !t.After(l.last) {
		t = l.last.Add(time.Microsecond)
	}

	l.last = t
	return t
}

// NewID returns a fresh random identifier suitable for records and log entries
func NewID() (string, error) {
	return gonanoid.New(idSize)
}

// CreateFileRecord stores a new file record. The returned record is only valid
// if err is nil, anything else means nothing was durably written.
func (l *Ledger) CreateFileRecord(ctx context.Context, displayName, storageKey string, owner model.Principal, size int64, contentType string) (*model.File, error) {
	id, err := NewID()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate id, %w", ErrPersistence, err)
	}

	f := &model.File{
		ID:          id,
		DisplayName: displayName,
		StorageKey:  storageKey,
		Owner:       owner,
		ContentType: contentType,
		Size:        size,
		CreatedAt:   l.stamp(),
	}

	if err := l.db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to save file record, %w", ErrPersistence, err)
	}

	return f, nil
}

func (l *Ledger) GetFileRecord(ctx context.Context, id string) (*model.File, error) {
	var f model.File

	err := l.db.
		WithContext(ctx).
		Where("id = ?", id).
		First(&f).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%w: failed to fetch file record, %w", ErrPersistence, err)
	}

	return &f, nil
}

// ListFileRecords returns every file record, newest first. Ties on created_at
// are broken by id so the order is stable between calls.
func (l *Ledger) ListFileRecords(ctx context.Context) ([]model.File, error) {
	var files []model.File

	err := l.db.
		WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list file records, %w", ErrPersistence, err)
	}

	return files, nil
}

// AppendAccessLog writes entry as-is. Writing the same entry twice is a no-op
// so callers may retry freely.
func (l *Ledger) AppendAccessLog(ctx context.Context, entry *model.AccessLog) error {
	err := l.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).
		Error
	if err != nil {
		return fmt.Errorf("%w: failed to append access log, %w", ErrPersistence, err)
	}

	return nil
}

// NewAccessLog prepares an entry for AppendAccessLog with a fresh id and timestamp
func (l *Ledger) NewAccessLog(fileID string, viewer model.Principal) (*model.AccessLog, error) {
	id, err := NewID()
	if err != nil {
		return nil, err
	}

	return &model.AccessLog{
		ID:        id,
		FileID:    fileID,
		Viewer:    viewer,
		Timestamp: l.stamp(),
	}, nil
}

func (l *Ledger) ListAccessLogs(ctx context.Context) ([]model.AccessLog, error) {
	var entries []model.AccessLog

	err := l.db.
		WithContext(ctx).
		Order("timestamp desc").
		Order("id desc").
		Find(&entries).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list access logs, %w", ErrPersistence, err)
	}

	return entries, nil
}

// CountAccessLogs returns how many times a file was downloaded
func (l *Ledger) CountAccessLogs(ctx context.Context, fileID string) (int64, error) {
	var n int64

	err := l.db.
		WithContext(ctx).
		Model(model.AccessLog{}).
		Where("file_id = ?", fileID).
		Count(&n).
		Error
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count access logs, %w", ErrPersistence, err)
	}

	return n, nil
}
