// Package fileutil picks non-clobbering output names and serialises writers
// that share an output stem.
package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// maxRotations bounds the search for a free rotated name.
const maxRotations = 1 << 20

// lockRetry is the polling interval while waiting for an output lock.
const lockRetry = 100 * time.Millisecond

// SplitExt splits a path into everything before the extension dot and the
// extension without its dot. A base name needs exactly one dot to split.
func SplitExt(path string) (stem, ext string, ok bool) {
	dir, base := filepath.Split(path)
	parts := strings.Split(base, ".")
	if len(parts) != 2 || parts[0] == "" {
		return "", "", false
	}
	return dir + parts[0], parts[1], true
}

// Rotated returns stem_n.ext for path stem.ext.
func Rotated(path string, n int) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + strconv.Itoa(n) + ext
}

// Rotate returns the first of stem_0.ext, stem_1.ext, ... that does not exist.
func Rotate(path string) (string, error) {
	for n := 0; n < maxRotations; n++ {
		candidate := Rotated(path, n)
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", path, maxRotations)
}

// Lock is an advisory lock on <path>.lock.
type Lock struct {
	path string
	fl   *flock.Flock
}

// NewLock returns the lock guarding outputs derived from path.
func NewLock(path string) *Lock {
	lockPath := path + ".lock"
	return &Lock{path: lockPath, fl: flock.New(lockPath)}
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Acquire blocks until the lock is held or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	ok, err := l.fl.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("acquire lock %s: not acquired", l.path)
	}
	return nil
}

// Release unlocks. The lock file is left in place so that concurrent
// waiters keep locking the same inode.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
