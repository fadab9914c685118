//go:build !windows

package instance

import (
	stderrors "errors"
	"syscall"
)

func killProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGKILL)
}

// processAlive probes pid with signal 0. EPERM means it exists but belongs
// to another user.
func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || stderrors.Is(err, syscall.EPERM)
}
