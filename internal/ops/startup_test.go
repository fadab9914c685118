package ops

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/config"
	"github.com/hpungsan/gemshot/internal/errors"
	"github.com/hpungsan/gemshot/internal/registry"
)

// newBareEnv returns an Env whose config has no vault root.
func newBareEnv(t *testing.T) Env {
	t.Helper()
	base := t.TempDir()
	reg, err := registry.Open(filepath.Join(base, registry.DataDir))
	require.NoError(t, err)
	return Env{Config: config.NewStore(base), Registry: reg, Activity: activity.Discard()}
}

func TestCleanPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{`"/home/me/Vault"`, "/home/me/Vault"},
		{`  '/tmp/x'  `, "/tmp/x"},
		{"/plain", "/plain"},
		{`""`, ""},
		{"   ", ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, CleanPath(tc.in), "CleanPath(%q)", tc.in)
	}
}

func TestStartup_CreatesVaultFolders(t *testing.T) {
	env := newBareEnv(t)
	root := filepath.Join(t.TempDir(), "My Vault")

	out, err := Startup(context.Background(), env, StartupInput{VaultRoot: `"` + root + `"`, APIKey: "k"})
	require.NoError(t, err)
	require.False(t, out.Prompted)
	require.True(t, out.HasAPIKey)
	require.Equal(t, root, out.Paths.Root)

	for _, dir := range []string{root, out.Paths.Universes, out.Paths.Projects, out.Paths.OutputAttachments()} {
		require.DirExists(t, dir)
	}

	cfg, err := env.Config.Load()
	require.NoError(t, err)
	require.Equal(t, root, cfg.VaultRoot)
}

func TestStartup_Prompts(t *testing.T) {
	env := newBareEnv(t)
	root := t.TempDir()

	var suggested string
	out, err := Startup(context.Background(), env, StartupInput{
		Prompt: func(s string) (string, error) {
			suggested = s
			return "  " + root + "\n", nil
		},
	})
	require.NoError(t, err)
	require.True(t, out.Prompted)
	require.False(t, out.HasAPIKey)
	require.Equal(t, filepath.Join(env.Config.BaseDir(), config.DefaultVaultDir), suggested)
	require.Equal(t, root, out.Paths.Root)
}

func TestStartup_AbortsWithoutRoot(t *testing.T) {
	env := newBareEnv(t)

	_, err := Startup(context.Background(), env, StartupInput{
		Prompt: func(string) (string, error) { return "", nil },
	})
	require.True(t, errors.Is(err, errors.ErrConfigMissing), "got %v", err)

	_, err = Startup(context.Background(), env, StartupInput{})
	require.True(t, errors.Is(err, errors.ErrConfigMissing), "got %v", err)

	_, err = Startup(context.Background(), env, StartupInput{
		Prompt: func(string) (string, error) { return "", fmt.Errorf("stdin closed") },
	})
	require.True(t, errors.Is(err, errors.ErrInternal), "got %v", err)
}

func TestStartup_KeepsConfiguredRoot(t *testing.T) {
	env, paths := newTestEnv(t)

	out, err := Startup(context.Background(), env, StartupInput{
		VaultRoot: "/ignored",
		Prompt: func(string) (string, error) {
			t.Fatal("prompt should not run when a root is configured")
			return "", nil
		},
	})
	require.NoError(t, err)
	require.Equal(t, paths.Root, out.Paths.Root)
}
