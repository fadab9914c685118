package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/config"
	"github.com/hpungsan/gemshot/internal/errors"
)

// StartupInput contains parameters for the Startup operation.
type StartupInput struct {
	// VaultRoot is used when the config has none.
	VaultRoot string

	// Prompt asks the user for a vault root when neither the config nor
	// VaultRoot provide one. It receives the suggested default.
	Prompt func(suggested string) (string, error)

	// APIKey is the resolved Gemini key. Empty only produces a warning.
	APIKey string
}

// StartupOutput contains the result of the Startup operation.
type StartupOutput struct {
	Paths     config.VaultPaths `json:"paths"`
	Prompted  bool              `json:"prompted"`
	HasAPIKey bool              `json:"has_api_key"`
}

// Startup runs the first-run checks: it makes sure a vault root is
// configured, creates the vault folders, and warns when no API key is set.
// A vault root that is still missing after prompting aborts with
// CONFIG_MISSING.
func Startup(ctx context.Context, env Env, input StartupInput) (*StartupOutput, error) {
	cfg, err := env.Config.Load()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	rec := env.recorder()
	out := &StartupOutput{}

	if strings.TrimSpace(cfg.VaultRoot) == "" {
		root := CleanPath(input.VaultRoot)
		if root == "" && input.Prompt != nil {
			suggested := filepath.Join(env.Config.BaseDir(), config.DefaultVaultDir)
			answer, err := input.Prompt(suggested)
			if err != nil {
				return nil, errors.NewInternal(fmt.Errorf("read vault root: %w", err))
			}
			root = CleanPath(answer)
			out.Prompted = true
		}
		if root == "" {
			return nil, errors.NewConfigMissing(config.KeyVaultRoot)
		}
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		if err := env.Config.SetVaultRoot(root); err != nil {
			return nil, errors.NewInternal(err)
		}
		rec.Event(ctx, activity.KindConfig, "Vault root set", "root", root)
	}

	_, paths, err := env.paths()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	for _, dir := range []string{paths.Root, paths.Universes, paths.Projects, paths.Output, paths.OutputAttachments()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("create %s: %w", dir, err))
		}
	}
	out.Paths = paths

	if strings.TrimSpace(input.APIKey) == "" {
		rec.Warn(ctx, "Gemini API key missing; AI features are disabled")
	} else {
		out.HasAPIKey = true
		rec.Event(ctx, activity.KindSystem, "Gemini API key loaded")
	}
	rec.Event(ctx, activity.KindSystem, "Startup checks completed", "root", paths.Root)
	return out, nil
}

// CleanPath trims whitespace and surrounding quotes from a typed or pasted
// path.
func CleanPath(raw string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`))
}
