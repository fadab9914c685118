package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/config"
	"github.com/hpungsan/gemshot/internal/registry"
)

// fixedNow is the clock used by every ops test (unix 1700000000).
var fixedNow = time.Unix(1700000000, 0).UTC()

// newTestEnv creates an Env over a fresh base directory whose vault lives
// at <base>/vault. The vault roots are created; project and universe
// folders are not.
func newTestEnv(t *testing.T) (Env, config.VaultPaths) {
	t.Helper()
	base := t.TempDir()

	store := config.NewStore(base)
	require.NoError(t, store.SetVaultRoot(filepath.Join(base, "vault")))

	reg, err := registry.Open(filepath.Join(base, registry.DataDir))
	require.NoError(t, err)

	paths, err := store.Paths()
	require.NoError(t, err)
	mkdirs(t, paths.Universes, paths.Projects)

	return Env{
		Config:   store,
		Registry: reg,
		Activity: activity.Discard(),
		Now:      func() time.Time { return fixedNow },
	}, paths
}

func mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// tempCapture writes a fake PNG outside the vault, like a fresh screenshot.
func tempCapture(t *testing.T) string {
	t.Helper()
	return writeFile(t, filepath.Join(t.TempDir(), "capture_tmp.png"), "\x89PNG fake")
}
