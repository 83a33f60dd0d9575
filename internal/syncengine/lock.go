package syncengine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
)

// ErrTargetLocked is returned when another process is syncing a target.
var ErrTargetLocked = errors.New("target is locked by another process")

// TargetLocker hands out per-target file locks from one directory.
type TargetLocker struct {
	dir string
}

// NewTargetLocker keeps lock files in dir. An empty dir uses the user
// cache directory.
func NewTargetLocker(dir string) (*TargetLocker, error) {
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to find cache directory: %w", err)
		}

		dir = filepath.Join(cache, "quickcopy", "locks")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory %s: %w", dir, err)
	}

	return &TargetLocker{dir: dir}, nil
}

// Path returns the lock file used for target.
func (l *TargetLocker) Path(target string) string {
	return filepath.Join(l.dir, strconv.FormatUint(xxhash.Sum64String(target), 16)+".lock")
}

// Lock takes the target's lock without waiting. The returned func
// releases it.
func (l *TargetLocker) Lock(target string) (func(), error) {
	fileLock := flock.New(l.Path(target))

	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", target, err)
	}

	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrTargetLocked, target)
	}

	return func() {
		_ = fileLock.Unlock()
	}, nil
}
