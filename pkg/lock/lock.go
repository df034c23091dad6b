// Package lock serializes installer runs with an exclusive lock file. Two
// installs mutating the same tree at once can interleave the wipe and copy
// phases, so every run takes the lock before touching the install root.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/logging"
)

// Lock is a held lock file
type Lock struct {
	path string
}

// Acquire takes the lock at path, creating parent directories as needed.
// A lock left behind by a dead process is reclaimed. Returns ErrLockHeld
// when another live installer holds it.
func Acquire(path string) (*Lock, error) {
	logger := logging.GetLogger("lock")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for lock file %s", path)
	}

	for attempt := 0; attempt < 2; attempt++ {
		if err := tryCreate(path); err == nil {
			logger.Debug().Str("path", path).Msg("acquired install lock")
			return &Lock{path: path}, nil
		} else if !os.IsExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileCreate, "failed to create lock file %s", path)
		}

		pid, ok := holderPID(path)
		if ok && processAlive(pid) {
			return nil, errors.New(errors.ErrLockHeld,
				"another installer is already running").
				WithDetail("path", path).
				WithDetail("pid", pid)
		}

		// Holder is gone or the file is garbage; reclaim and retry once.
		logger.Warn().Str("path", path).Int("pid", pid).Msg("removing stale install lock")
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to remove stale lock file %s", path)
		}
	}

	return nil, errors.New(errors.ErrLockHeld, "could not acquire install lock").
		WithDetail("path", path)
}

// Release removes the lock file. Safe to call once per acquired lock.
func (l *Lock) Release() {
	logger := logging.GetLogger("lock")
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		logger.Warn().Str("path", l.path).Err(err).Msg("failed to remove install lock")
		return
	}
	logger.Debug().Str("path", l.path).Msg("released install lock")
}

func tryCreate(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	return f.Close()
}

func holderPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func processAlive(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
