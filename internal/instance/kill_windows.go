//go:build windows

package instance

import (
	"os"
	"os/exec"
	"strconv"
)

func killProcess(pid int) error {
	return exec.Command("taskkill", "/F", "/PID", strconv.Itoa(pid)).Run()
}

// processAlive reports whether a process handle can be opened for pid.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
