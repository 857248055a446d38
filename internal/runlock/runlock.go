// Package runlock keeps two seeding runs from working through the same
// concept file at the same time.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld is returned when another process holds the lock.
var ErrHeld = errors.New("lock is held by another run")

// Lock is an acquired advisory file lock.
type Lock struct {
	fl *flock.Flock
}

// Path returns the lock file used for conceptFile inside dir. An empty dir
// means the system temp directory.
func Path(dir, conceptFile string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	abs, err := filepath.Abs(conceptFile)
	if err != nil {
		abs = conceptFile
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(dir, "redseed-"+hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the lock for conceptFile without blocking.
func Acquire(dir, conceptFile string) (*Lock, error) {
	fl := flock.New(Path(dir, conceptFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHeld, fl.Path())
	}
	return &Lock{fl: fl}, nil
}

// Release unlocks the lock. The lock file stays on disk: removing it would
// let a process that already opened the old file lock it while another
// process locks a freshly created one.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
