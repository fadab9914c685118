// Package platform opens files and folders with the desktop's default
// handler.
package platform

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/hpungsan/gemshot/internal/errors"
)

// OpenPath opens path with the system handler without waiting for it.
func OpenPath(path string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
		return errors.NewInternal(err)
	}

	name, args := openCommand(runtime.GOOS, path)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return errors.NewInternal(err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}
