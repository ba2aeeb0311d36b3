package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lockFileName   = "sip.lock"
	defaultTimeout = 2 * time.Second
	minRetry       = 5 * time.Millisecond
	maxRetry       = 50 * time.Millisecond
)

// ErrLockTimeout is returned when another process keeps the store locked
var ErrLockTimeout = errors.New("kv: store is locked by another process")

// lockHolder is written into the lock file by whoever holds it
type lockHolder struct {
	PID     int       `json:"pid"`
	Command string    `json:"command"`
	Since   time.Time `json:"since"`
}

func (h lockHolder) String() string {
	s := fmt.Sprintf("pid %d (%s) since %s", h.PID, h.Command, h.Since.Format(time.RFC3339))
	if h.PID > 0 && !isProcessAlive(h.PID) {
		s += ", process gone"
	}
	return s
}

// LockTimeoutError names the holder that kept the lock past the timeout
type LockTimeoutError struct {
	Waited time.Duration
	Holder *lockHolder
}

func (e *LockTimeoutError) Error() string {
	holder := "unknown holder"
	if e.Holder != nil {
		holder = e.Holder.String()
	}
	return fmt.Sprintf("%v after %v: %s", ErrLockTimeout, e.Waited, holder)
}

func (e *LockTimeoutError) Unwrap() error { return ErrLockTimeout }

// fileLock is an exclusive OS-level lock on <dir>/sip.lock. The OS drops it
// when the process exits, crashes included.
type fileLock struct {
	path string
	f    *os.File
}

func newFileLock(dir string) *fileLock {
	return &fileLock{path: filepath.Join(dir, lockFileName)}
}

// acquire retries with growing waits until it holds the lock, ctx ends or
// timeout passes.
func (l *fileLock) acquire(ctx context.Context, timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	wait := minRetry
	for {
		if lockFile(f) == nil {
			l.f = f
			l.record()
			return nil
		}
		if time.Now().After(deadline) {
			f.Close()
			return &LockTimeoutError{Waited: timeout, Holder: readHolder(l.path)}
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			f.Close()
			return ctx.Err()
		case <-t.C:
		}
		wait = min(wait*2, maxRetry)
	}
}

func (l *fileLock) release() error {
	if l.f == nil {
		return nil
	}
	l.f.Truncate(0)
	unlockFile(l.f)
	err := l.f.Close()
	l.f = nil
	return err
}

// record writes this process as the holder
func (l *fileLock) record() {
	data, err := json.Marshal(lockHolder{
		PID:     os.Getpid(),
		Command: filepath.Base(os.Args[0]),
		Since:   time.Now(),
	})
	if err != nil {
		return
	}
	l.f.Truncate(0)
	l.f.WriteAt(data, 0)
	l.f.Sync()
}

func readHolder(path string) *lockHolder {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil
	}
	var h lockHolder
	if err := json.Unmarshal(data, &h); err != nil {
		return nil
	}
	return &h
}

// lockFile, unlockFile and isProcessAlive live in lock_unix.go / lock_windows.go
