package blob

import (
	"bitwise74/file-share/pkg/util"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/spf13/afero"
)

// LocalStore keeps blobs on a filesystem. Writes go to a temporary file that
// is renamed into place once complete, so a key either holds the full blob or
// nothing.
type LocalStore struct {
	fs afero.Fs
}

func NewLocalStore(fsys afero.Fs) *LocalStore {
	return &LocalStore{fs: fsys}
}

// NewDiskStore roots a LocalStore at dir on the OS filesystem
func NewDiskStore(dir string) (*LocalStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory, %w", err)
	}

	return NewLocalStore(afero.NewBasePathFs(osFs, dir)), nil
}

func (l *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, _ string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}

	if err := l.fs.MkdirAll(path.Dir(key), 0o750); err != nil {
		return fmt.Errorf("failed to create blob directory, %w", err)
	}

	tmp := key + ".part-" + util.RandStr(8)

	f, err := l.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create blob file, %w", err)
	}

	n, err := io.Copy(f, readerWithContext(ctx, r))
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("short write, wrote %d of %d bytes", n, size)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		l.fs.Remove(tmp)
		return fmt.Errorf("failed to write blob, %w", err)
	}

	if err := l.fs.Rename(tmp, key); err != nil {
		l.fs.Remove(tmp)
		return fmt.Errorf("failed to move blob into place, %w", err)
	}

	return nil
}

func (l *LocalStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if !ValidKey(key) {
		return nil, ErrInvalidKey
	}

	f, err := l.fs.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to open blob, %w", err)
	}

	return f, nil
}

func (l *LocalStore) Delete(_ context.Context, key string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}

	err := l.fs.Remove(key)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob, %w", err)
	}

	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}
