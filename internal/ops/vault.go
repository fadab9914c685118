package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/errors"
)

// RouteFor resolves the save target for input against the configured vault.
func RouteFor(env Env, input RouteInput) (*RouteOutput, error) {
	if err := ValidateFolderName("universe", strings.TrimSpace(input.Universe)); err != nil {
		return nil, err
	}
	if err := ValidateFolderName("project", strings.TrimSpace(input.Project)); err != nil {
		return nil, err
	}
	_, paths, err := env.paths()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	out := Route(paths, input)
	return &out, nil
}

// Recover kinds.
const (
	RecoverKindImage = "image"
	RecoverKindNote  = "note"
)

// RecoverInput contains parameters for the Recover operation.
type RecoverInput struct {
	Path     string // the recorded, possibly stale, path
	Title    string
	Universe string
	Project  string
	Kind     string // image or note; default image
}

// RecoverOutput contains the result of the Recover operation.
type RecoverOutput struct {
	Path  string `json:"path"`
	Found bool   `json:"found"`
	Kind  string `json:"kind"`
}

// Recover locates a moved image or note. A miss is not an error: Found is
// false and Path echoes the recorded path.
func Recover(env Env, input RecoverInput) (*RecoverOutput, error) {
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	if kind == "" {
		kind = RecoverKindImage
	}
	if kind != RecoverKindImage && kind != RecoverKindNote {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown kind %q (expected image|note)", input.Kind))
	}
	if strings.TrimSpace(input.Path) == "" && strings.TrimSpace(input.Title) == "" {
		return nil, errors.NewInvalidRequest("path or title is required")
	}
	if err := ValidateFolderName("universe", strings.TrimSpace(input.Universe)); err != nil {
		return nil, err
	}
	if err := ValidateFolderName("project", strings.TrimSpace(input.Project)); err != nil {
		return nil, err
	}

	_, paths, err := env.paths()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	recoverFn := RecoverImage
	if kind == RecoverKindNote {
		recoverFn = RecoverNote
	}
	found, ok := recoverFn(paths, input.Path, input.Title, input.Universe, input.Project)
	if !ok {
		return &RecoverOutput{Path: input.Path, Kind: kind}, nil
	}
	return &RecoverOutput{Path: found, Found: true, Kind: kind}, nil
}

// Registry collections exposed to callers.
const (
	CollectionUniverses = "universes"
	CollectionProjects  = "projects"
	CollectionRoles     = "roles"
	CollectionClients   = "clients"
)

// Collections lists the collection names accepted by ListCollection and
// AddToCollection.
var Collections = []string{CollectionUniverses, CollectionProjects, CollectionRoles, CollectionClients}

// ListCollection returns the names stored in a registry collection.
func ListCollection(env Env, collection string) ([]string, error) {
	var (
		names []string
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(collection)) {
	case CollectionUniverses:
		names, err = env.Registry.Universes()
	case CollectionProjects:
		names, err = env.Registry.Projects()
	case CollectionRoles:
		names, err = env.Registry.Roles()
	case CollectionClients:
		names, err = env.Registry.ClientNames()
	default:
		return nil, unknownCollection(collection)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return names, nil
}

// AddOutput contains the result of the AddToCollection operation.
type AddOutput struct {
	Collection string `json:"collection"`
	Name       string `json:"name"`
	Added      bool   `json:"added"`
}

// AddToCollection adds name to a registry collection. Adding an existing
// name is a no-op reported with Added false.
func AddToCollection(ctx context.Context, env Env, collection, name string) (*AddOutput, error) {
	collection = strings.ToLower(strings.TrimSpace(collection))
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	var (
		added bool
		err   error
	)
	switch collection {
	case CollectionUniverses, CollectionProjects:
		if err := ValidateFolderName(strings.TrimSuffix(collection, "s"), name); err != nil {
			return nil, err
		}
	}
	switch collection {
	case CollectionUniverses:
		added, err = env.Registry.AddUniverse(name)
	case CollectionProjects:
		added, err = env.Registry.AddProject(name)
	case CollectionRoles:
		added, err = env.Registry.AddRole(name)
	case CollectionClients:
		added, err = env.Registry.AddClient(name)
	default:
		return nil, unknownCollection(collection)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if added {
		env.recorder().Event(ctx, activity.KindData, "Added to "+collection, "name", name)
	}
	return &AddOutput{Collection: collection, Name: name, Added: added}, nil
}

func unknownCollection(c string) error {
	return errors.NewInvalidRequest(fmt.Sprintf("unknown collection %q (expected %s)", c, strings.Join(Collections, "|")))
}
