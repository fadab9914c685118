package config

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultVaultDir is the vault folder created next to the app when vault_root is unset.
	DefaultVaultDir = "GemShot_Vault"

	// OutputDir is the fallback destination for captures that match no folder.
	OutputDir = "output"

	// AttachmentsDir is the image subfolder of every note folder.
	AttachmentsDir = "attachments"
)

// VaultPaths are the derived vault locations. They are recomputed on demand
// and never persisted on their own.
type VaultPaths struct {
	Root      string `json:"root"`
	Universes string `json:"universes"`
	Projects  string `json:"projects"`
	Output    string `json:"output"`
}

// Paths derives the vault paths relative to baseDir.
// Specific roots win over derivation from vault_root.
func (c *Config) Paths(baseDir string) VaultPaths {
	root := strings.TrimSpace(c.VaultRoot)
	if root == "" {
		root = filepath.Join(baseDir, DefaultVaultDir)
	}
	root = absOrClean(root)

	universes := strings.TrimSpace(c.UniversesRoot)
	if universes == "" {
		universes = filepath.Join(root, "0_TZOL", "10_Areas")
	}
	projects := strings.TrimSpace(c.ProjectsRoot)
	if projects == "" {
		projects = filepath.Join(root, "0_TZOL", "20_Projects")
	}

	return VaultPaths{
		Root:      root,
		Universes: absOrClean(universes),
		Projects:  absOrClean(projects),
		Output:    absOrClean(filepath.Join(baseDir, OutputDir)),
	}
}

// OutputAttachments returns the local capture folder.
func (p VaultPaths) OutputAttachments() string {
	return filepath.Join(p.Output, AttachmentsDir)
}

func absOrClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
