// Package file keeps the backend text in a local flat file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"

	"github.com/neomorfeo/keyledger/internal/domain"
)

// Compile-time checks.
var (
	_ domain.Backend  = (*Backend)(nil)
	_ domain.Appender = (*Backend)(nil)
)

const lockRetryDelay = 20 * time.Millisecond

// Backend implements domain.Backend and domain.Appender on one file.
// Access within this process serializes on a mutex and across processes on
// an advisory lock next to the file. The version token is a
// quoted xxhash of the content, usable as an HTTP ETag.
type Backend struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// New returns a backend for path. The file is created on first write.
func New(path string) *Backend {
	return &Backend{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load reads the file. A missing file is empty content.
func (b *Backend) Load(ctx context.Context) (domain.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return domain.Snapshot{}, fmt.Errorf("acquiring read lock: %w", err)
	}
	defer b.lock.Unlock()

	content, err := b.read()
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{Content: content, Version: Version(content)}, nil
}

// Save replaces the file through a temp file and rename. A non-empty
// ifVersion must match the current content's version.
func (b *Backend) Save(ctx context.Context, content, ifVersion string) (domain.Snapshot, error) {
	snap, _, err := b.Put(ctx, content, ifVersion)
	return snap, err
}

// Put is Save with HTTP precondition semantics. ifMatch "*" requires the
// file to exist. created reports whether the file did not exist before.
// The existence check, the precondition and the write share one lock.
func (b *Backend) Put(ctx context.Context, content, ifMatch string) (snap domain.Snapshot, created bool, err error) {
	unlock, err := b.writeLock(ctx)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	defer unlock()

	existed, err := b.exists()
	if err != nil {
		return domain.Snapshot{}, false, err
	}

	switch ifMatch {
	case "":
	case "*":
		if !existed {
			return domain.Snapshot{}, false, domain.ErrVersionConflict
		}
	default:
		current, err := b.read()
		if err != nil {
			return domain.Snapshot{}, false, err
		}
		if Version(current) != ifMatch {
			return domain.Snapshot{}, false, domain.ErrVersionConflict
		}
	}

	if err := WriteAtomic(b.path, []byte(content)); err != nil {
		return domain.Snapshot{}, false, err
	}
	return domain.Snapshot{Content: content, Version: Version(content)}, !existed, nil
}

// Append adds line to the end of the file under the write lock.
func (b *Backend) Append(ctx context.Context, line string) error {
	unlock, err := b.writeLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", b.path, err)
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("appending to %s: %w", b.path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("syncing %s: %w", b.path, err)
	}
	return f.Close()
}

func (b *Backend) writeLock(ctx context.Context) (func(), error) {
	b.mu.Lock()
	if _, err := b.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("acquiring write lock: %w", err)
	}
	return func() {
		_ = b.lock.Unlock()
		b.mu.Unlock()
	}, nil
}

func (b *Backend) read() (string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", b.path, err)
	}
	return string(data), nil
}

// Version returns the quoted version token for content.
func Version(content string) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64String(content))
}

// WriteAtomic writes data to a temporary file in the destination directory,
// syncs it, and renames it over path.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
