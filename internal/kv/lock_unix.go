//go:build unix

package kv

import (
	"os"

	"golang.org/x/sys/unix"
)

func lockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func unlockFile(f *os.File) {
	unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

func isProcessAlive(pid int) bool {
	// Signal 0 only probes; EPERM still means the process exists
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
