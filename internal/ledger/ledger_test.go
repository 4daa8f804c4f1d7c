package ledger

import (
	"bitwise74/file-share/db"
	"bitwise74/file-share/internal/model"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return New(conn)
}

func TestCreateAndGetFileRecord(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	f, err := l.CreateFileRecord(ctx, "report.pdf", "files/abc", "a@x.com", 10, "application/pdf")
	require.NoError(t, err)
	assert.Len(t, f.ID, idSize)
	assert.False(t, f.CreatedAt.IsZero())

	got, err := l.GetFileRecord(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.DisplayName)
	assert.Equal(t, "files/abc", got.StorageKey)
	assert.Equal(t, model.Principal("a@x.com"), got.Owner)
	assert.Equal(t, int64(10), got.Size)
}

func TestGetFileRecordNotFound(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.GetFileRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIDsAreUnique(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := range 20 {
		f, err := l.CreateFileRecord(ctx, "same.txt", fmt.Sprintf("files/%d", i), "a@x.com", 1, "text/plain")
		require.NoError(t, err)
		assert.False(t, seen[f.ID], "duplicate id %s", f.ID)
		seen[f.ID] = true
	}
}

func TestDuplicateStorageKeyFails(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateFileRecord(ctx, "a.txt", "files/same", "a@x.com", 1, "text/plain")
	require.NoError(t, err)

	_, err = l.CreateFileRecord(ctx, "b.txt", "files/same", "a@x.com", 1, "text/plain")
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestListFileRecordsNewestFirst(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	// Freeze the clock so every record gets the same base time, stamp() must
	// still hand out strictly increasing values
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return frozen }

	var ids []string
	for i := range 5 {
		f, err := l.CreateFileRecord(ctx, fmt.Sprintf("%d.txt", i), fmt.Sprintf("files/%d", i), "a@x.com", 1, "text/plain")
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}

	files, err := l.ListFileRecords(ctx)
	require.NoError(t, err)
	require.Len(t, files, 5)

	for i, f := range files {
		assert.Equal(t, ids[len(ids)-1-i], f.ID)
		if i > 0 {
			assert.True(t, files[i-1].CreatedAt.After(f.CreatedAt))
		}
	}

	again, err := l.ListFileRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, files, again)
}

func TestAppendAccessLogIsIdempotent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	entry, err := l.NewAccessLog("F1", "b@x.com")
	require.NoError(t, err)

	require.NoError(t, l.AppendAccessLog(ctx, entry))
	require.NoError(t, l.AppendAccessLog(ctx, entry))

	n, err := l.CountAccessLogs(ctx, "F1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := l.ListAccessLogs(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.Principal("b@x.com"), entries[0].Viewer)
}
