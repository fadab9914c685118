package ops

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/gemshot/internal/errors"
)

func TestRouteFor(t *testing.T) {
	env, paths := newTestEnv(t)
	mkdirs(t, filepath.Join(paths.Universes, "Health"))

	out, err := RouteFor(env, RouteInput{Universe: "Health", Project: "Missing"})
	require.NoError(t, err)
	require.Equal(t, RouteUniverse, out.Reason)
	require.Equal(t, filepath.Join(paths.Universes, "Health"), out.Target)
}

func TestRecover(t *testing.T) {
	env, paths := newTestEnv(t)
	moved := writeFile(t, filepath.Join(paths.Projects, "GemShot", "attachments", "Login_Bug_1700000000.png"), "png")
	note := writeFile(t, filepath.Join(paths.Projects, "GemShot", "Login Bug.md"), "# Login Bug")

	out, err := Recover(env, RecoverInput{Path: "/old/place/Login_Bug_1700000000.png"})
	require.NoError(t, err)
	require.True(t, out.Found)
	require.Equal(t, moved, out.Path)
	require.Equal(t, RecoverKindImage, out.Kind)

	out, err = Recover(env, RecoverInput{Path: "/old/Login Bug.md", Title: "Login Bug", Project: "GemShot", Kind: "NOTE"})
	require.NoError(t, err)
	require.True(t, out.Found)
	require.Equal(t, note, out.Path)

	out, err = Recover(env, RecoverInput{Path: "/old/nothing_1111111111.png"})
	require.NoError(t, err)
	require.False(t, out.Found)
	require.Equal(t, "/old/nothing_1111111111.png", out.Path)
}

func TestRecover_InvalidInput(t *testing.T) {
	env, _ := newTestEnv(t)

	_, err := Recover(env, RecoverInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Recover(env, RecoverInput{Path: "/x.png", Kind: "video"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Recover(env, RecoverInput{Title: "x", Project: "../outside"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestRouteFor_RejectsPathNames(t *testing.T) {
	env, _ := newTestEnv(t)

	_, err := RouteFor(env, RouteInput{Project: "../../etc"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = RouteFor(env, RouteInput{Universe: "a/b"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestCollections(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	out, err := AddToCollection(ctx, env, "Projects", "  Atlas ")
	require.NoError(t, err)
	require.Equal(t, &AddOutput{Collection: CollectionProjects, Name: "Atlas", Added: true}, out)

	out, err = AddToCollection(ctx, env, CollectionProjects, "Atlas")
	require.NoError(t, err)
	require.False(t, out.Added)

	names, err := ListCollection(env, CollectionProjects)
	require.NoError(t, err)
	require.Contains(t, names, "Atlas")

	out, err = AddToCollection(ctx, env, CollectionClients, "internal")
	require.NoError(t, err)
	require.False(t, out.Added, "client names are unique ignoring case")

	clients, err := ListCollection(env, CollectionClients)
	require.NoError(t, err)
	require.Equal(t, []string{"Internal"}, clients)
}

func TestCollections_Invalid(t *testing.T) {
	env, _ := newTestEnv(t)

	_, err := ListCollection(env, "tasks")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = AddToCollection(context.Background(), env, "roles", "  ")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = AddToCollection(context.Background(), env, "tags", "x")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	for _, name := range []string{"../escaped", "..", "a/b", `a\b`} {
		_, err = AddToCollection(context.Background(), env, CollectionProjects, name)
		require.True(t, errors.Is(err, errors.ErrInvalidRequest), "project %q", name)
	}
	_, err = AddToCollection(context.Background(), env, CollectionUniverses, "../up")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	projects, err := ListCollection(env, CollectionProjects)
	require.NoError(t, err)
	require.NotContains(t, projects, "../escaped")
}
