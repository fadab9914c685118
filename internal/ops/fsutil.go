package ops

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// copyFile copies src to dest, creating dest's directory.
// Neither end may be a symlink.
func copyFile(src, dest string) error {
	src = filepath.Clean(src)
	dest = filepath.Clean(dest)
	if src == "" || dest == "" {
		return errors.New("copy file: missing src/dest")
	}
	in, err := openFileNoFollowRead(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := openFileNoFollow(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// moveFile renames src to dest. When the rename fails (for example across
// volumes) it copies instead and leaves src in place; copied reports that.
func moveFile(src, dest string) (copied bool, err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, err
	}
	if err := os.Rename(src, dest); err == nil {
		return false, nil
	}
	if err := copyFile(src, dest); err != nil {
		return true, err
	}
	return true, nil
}

// writeFileNoFollow writes data to path, replacing any existing file.
func writeFileNoFollow(path string, data []byte) error {
	f, err := openFileNoFollow(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
