package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/gemshot/internal/errors"
)

func TestValidatePath_TraversalRejected(t *testing.T) {
	tests := []struct {
		name string
		path string
		mode PathCheckMode
	}{
		{"parent traversal image", "../shot.png", PathCheckImage},
		{"deep traversal image", "../../etc/shot.png", PathCheckImage},
		{"mid-path traversal target", "/tmp/../etc", PathCheckTarget},
		{"hidden in target", "/tmp/safe/../../../etc", PathCheckTarget},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, tc.mode)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_Empty(t *testing.T) {
	for _, mode := range []PathCheckMode{PathCheckImage, PathCheckTarget} {
		if err := ValidatePath("  ", mode); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("mode %d: expected ErrInvalidRequest, got %v", mode, err)
		}
	}
}

func TestValidatePath_Image(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "capture.png")
	if err := os.WriteFile(png, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	jpg := filepath.Join(dir, "capture.jpg")
	if err := os.WriteFile(jpg, []byte("jpg"), 0o644); err != nil {
		t.Fatal(err)
	}
	folder := filepath.Join(dir, "folder.png")
	if err := os.Mkdir(folder, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := ValidatePath(png, PathCheckImage); err != nil {
		t.Errorf("valid image rejected: %v", err)
	}
	if err := ValidatePath(jpg, PathCheckImage); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("jpg: expected ErrInvalidRequest, got %v", err)
	}
	if err := ValidatePath(filepath.Join(dir, "missing.png"), PathCheckImage); !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("missing: expected ErrFileNotFound, got %v", err)
	}
	if err := ValidatePath(folder, PathCheckImage); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("directory: expected ErrInvalidRequest, got %v", err)
	}
}

func TestValidatePath_ImageSymlinkRejected(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "orig.png")
	if err := os.WriteFile(orig, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.png")
	if err := os.Symlink(orig, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if err := ValidatePath(link, PathCheckImage); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for symlink, got %v", err)
	}
}

func TestValidatePath_Target(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing dir", dir, false},
		{"not yet created", filepath.Join(dir, "new", "folder"), false},
		{"relative", "relative/folder", true},
		{"regular file", file, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, PathCheckTarget)
			if tc.wantErr && !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePath_TargetSymlinkRejected(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "orig")
	if err := os.Mkdir(orig, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(orig, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if err := ValidatePath(link, PathCheckTarget); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for symlinked target, got %v", err)
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/vault/projects/GemShot", false},
		{"/vault/../etc", true},
		{"..", true},
		{"/vault/..hidden", false},
	}
	for _, tc := range tests {
		if got := containsTraversal(tc.path); got != tc.want {
			t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestValidateFolderName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"", true},
		{"GemShot", true},
		{"Web Redesign", true},
		{"..hidden", true},
		{".", false},
		{"..", false},
		{"../../../escaped", false},
		{"nested/folder", false},
		{`nested\folder`, false},
		{"/abs", false},
	}
	for _, tc := range tests {
		err := ValidateFolderName("project", tc.name)
		if tc.ok && err != nil {
			t.Errorf("ValidateFolderName(%q) error = %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("ValidateFolderName(%q) = %v, want ErrInvalidRequest", tc.name, err)
		}
	}
}
