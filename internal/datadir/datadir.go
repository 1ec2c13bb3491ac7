// Package datadir lays out the on-disk state of one vault index and guards
// it with a cross-process writer lock.
package datadir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	vserrors "github.com/ziadkadry99/vaultsearch/internal/errors"
	"github.com/ziadkadry99/vaultsearch/internal/indexer"
)

const (
	indexDirName = "index"
	lockFileName = "vaultsearch.lock"
)

// ErrLocked means another process holds the writer lock.
var ErrLocked = errors.New("data directory is locked by another vaultsearch process")

// Dir is a data directory.
type Dir struct {
	root string
}

// New returns the data directory rooted at root. Nothing is created until
// Ensure or Lock is called.
func New(root string) Dir {
	return Dir{root: root}
}

// Root returns the directory itself.
func (d Dir) Root() string { return d.root }

// IndexDir holds the persistent vector index.
func (d Dir) IndexDir() string { return filepath.Join(d.root, indexDirName) }

// StatePath is the sync state file.
func (d Dir) StatePath() string { return filepath.Join(d.root, indexer.StateFileName) }

// LockPath is the writer lock file.
func (d Dir) LockPath() string { return filepath.Join(d.root, lockFileName) }

// Ensure creates the directory tree.
func (d Dir) Ensure() error {
	if err := os.MkdirAll(d.IndexDir(), 0o755); err != nil {
		return vserrors.Fatal("datadir.ensure", d.root, err)
	}
	return nil
}

// Lock is a held writer lock.
type Lock struct {
	flock *flock.Flock
}

// Lock takes the exclusive writer lock without blocking. A lock held
// elsewhere fails with a Fatal error wrapping ErrLocked.
func (d Dir) Lock() (*Lock, error) {
	if err := d.Ensure(); err != nil {
		return nil, err
	}
	fl := flock.New(d.LockPath())
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, vserrors.Fatal("datadir.lock", d.LockPath(), fmt.Errorf("acquire lock: %w", err))
	}
	if !acquired {
		return nil, vserrors.Fatal("datadir.lock", d.root, ErrLocked)
	}
	return &Lock{flock: fl}, nil
}

// Release drops the lock. Safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || !l.flock.Locked() {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
