// Package ops implements the vault operations shared by the CLI, the MCP
// server, and the dashboard: path recovery, routing, saving, and listing.
package ops

import (
	"time"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/config"
	"github.com/hpungsan/gemshot/internal/registry"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Env bundles the stores an operation reads and writes.
// It is built once at startup and passed to every operation.
type Env struct {
	Config   *config.Store
	Registry *registry.Registry
	Activity *activity.Recorder

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Env) recorder() *activity.Recorder {
	if e.Activity != nil {
		return e.Activity
	}
	return activity.Discard()
}

// paths loads the config and derives the vault paths.
func (e Env) paths() (*config.Config, config.VaultPaths, error) {
	cfg, err := e.Config.Load()
	if err != nil {
		return nil, config.VaultPaths{}, err
	}
	return cfg, cfg.Paths(e.Config.BaseDir()), nil
}
