package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/gemshot/internal/errors"
)

// PathCheckMode selects which rules ValidatePath applies.
type PathCheckMode int

const (
	PathCheckImage  PathCheckMode = iota // capture to be filed (read)
	PathCheckTarget                      // destination folder override (write)
)

// ValidatePath checks user-supplied paths before a save touches the disk.
// It checks:
// 1. Path traversal (.. sequences)
// 2. Images: must exist, be a regular .png file
// 3. Targets: must be absolute, and a directory when they already exist
// 4. Symlink safety (neither may be a symlink)
func ValidatePath(path string, mode PathCheckMode) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	switch mode {
	case PathCheckImage:
		if !strings.EqualFold(filepath.Ext(cleaned), ".png") {
			return errors.NewInvalidRequest("image must have .png extension")
		}
		info, err := os.Lstat(cleaned)
		if os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
		if err != nil {
			return errors.NewInvalidRequest(fmt.Sprintf("invalid image path: %v", err))
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("image must not be a symlink")
		}
		if !info.Mode().IsRegular() {
			return errors.NewInvalidRequest("image must be a regular file")
		}

	case PathCheckTarget:
		if !filepath.IsAbs(cleaned) {
			return errors.NewInvalidRequest("target folder must be an absolute path")
		}
		info, err := os.Lstat(cleaned)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return errors.NewInvalidRequest(fmt.Sprintf("invalid target folder: %v", err))
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("target folder must not be a symlink")
		}
		if !info.IsDir() {
			return errors.NewInvalidRequest("target folder is not a directory")
		}

	default:
		return errors.NewInvalidRequest("unknown path check mode")
	}
	return nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check for forward slashes on all platforms (e.g., user input)
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// ValidateFolderName checks a universe or project name that is joined onto a
// vault root. Empty names are allowed and mean "none".
func ValidateFolderName(kind, name string) error {
	if name == "" {
		return nil
	}
	if name == "." || name == ".." || containsTraversal(name) ||
		strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return errors.NewInvalidRequest(fmt.Sprintf("%s name %q must be a single folder name", kind, name))
	}
	return nil
}
