// Package lockfile provides cross-process advisory locking for serializing
// concurrent refreshes of the same credential, plus a process-local registry
// so every lock acquired by this process can be released on exit even if the
// caller that acquired it never does.
package lockfile

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/pepicrft/schlussel/internal/logging"
)

// lockRegistry tracks every *flock.Flock this process has acquired, keyed by
// lock file path, so CleanupAllLocks can release them all (e.g. on SIGTERM).
type lockRegistry struct {
	mu    sync.RWMutex
	locks map[string]*flock.Flock
}

var globalRegistry = &lockRegistry{
	locks: make(map[string]*flock.Flock),
}

// RegisterLock tracks lock under path.
func (r *lockRegistry) RegisterLock(path string, lock *flock.Flock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks[path] = lock
}

// UnregisterLock stops tracking the lock at path.
func (r *lockRegistry) UnregisterLock(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, path)
}

// CleanupAll unlocks and forgets every tracked lock, removing the underlying
// lock files where possible.
func (r *lockRegistry) CleanupAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for path, lock := range r.locks {
		if err := lock.Unlock(); err != nil {
			logging.Debugf("lockfile: unlock %s: %v", path, err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Debugf("lockfile: remove %s: %v", path, err)
		}
		delete(r.locks, path)
	}
}

// NewTrackedLock creates a *flock.Flock for path and registers it with the
// process-global registry so CleanupAllLocks can find it later.
func NewTrackedLock(path string) *flock.Flock {
	lock := flock.New(path)
	globalRegistry.RegisterLock(path, lock)
	return lock
}

// ReleaseTrackedLock unlocks lock, removes its file, and unregisters it from
// the global registry. Safe to call even if lock is already unlocked.
func ReleaseTrackedLock(path string, lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		logging.Debugf("lockfile: unlock %s: %v", path, err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Debugf("lockfile: remove %s: %v", path, err)
	}
	globalRegistry.UnregisterLock(path)
}

// CleanupAllLocks releases every lock this process is currently tracking.
// Intended for use in a signal handler or deferred top-level cleanup.
func CleanupAllLocks() {
	globalRegistry.CleanupAll()
}

// CleanupStaleLocks removes *.lock files older than maxAge from each of
// dirs, skipping any still held by another process (a non-blocking
// TryLock that fails means someone else holds it). Nonexistent directories
// are skipped silently.
func CleanupStaleLocks(dirs []string, maxAge time.Duration) {
	now := time.Now()
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lock") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if now.Sub(info.ModTime()) < maxAge {
				continue
			}

			lock := flock.New(path)
			locked, err := lock.TryLock()
			if err != nil || !locked {
				continue
			}
			_ = lock.Unlock()
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logging.Debugf("lockfile: remove stale lock %s: %v", path, err)
			}
		}
	}
}
