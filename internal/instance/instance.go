// Package instance keeps a single GemShot listener running per base
// directory. A newer instance takes over by terminating the older one.
package instance

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileName is the PID file inside the base directory.
const FileName = "gemshot.pid"

// takeoverWait gives a terminated instance time to release its resources.
const takeoverWait = time.Second

// Guard owns the PID file for this process.
type Guard struct {
	path string
	pid  int

	// Seams for tests.
	alive func(pid int) bool
	kill  func(pid int) error
	wait  time.Duration
}

// New creates a Guard for the PID file at path.
func New(path string) *Guard {
	return &Guard{
		path:  path,
		pid:   os.Getpid(),
		alive: processAlive,
		kill:  killProcess,
		wait:  takeoverWait,
	}
}

// Path returns the PID file path.
func (g *Guard) Path() string {
	return g.path
}

// Acquire terminates a previous instance recorded in the PID file, if it is
// still running, and records this process. It returns the PID it
// terminated, or 0. An unreadable or stale PID file is ignored.
func (g *Guard) Acquire() (int, error) {
	killed := 0
	if old := g.readPID(); old > 0 && old != g.pid && g.alive(old) {
		if err := g.kill(old); err == nil {
			killed = old
			time.Sleep(g.wait)
		}
	}

	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return killed, fmt.Errorf("create pid directory: %w", err)
	}
	if err := os.WriteFile(g.path, []byte(strconv.Itoa(g.pid)), 0o644); err != nil {
		return killed, fmt.Errorf("write pid file: %w", err)
	}
	return killed, nil
}

// Release removes the PID file if it still names this process. A newer
// instance that took over keeps its file.
func (g *Guard) Release() error {
	if g.readPID() != g.pid {
		return nil
	}
	if err := os.Remove(g.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}

// readPID returns the recorded PID, or 0 when there is none.
func (g *Guard) readPID() int {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}
