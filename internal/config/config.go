package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config document name inside the base directory.
const FileName = "config.yaml"

// Recognized config keys.
const (
	KeyVaultRoot          = "vault_root"
	KeyUniversesRoot      = "universes_root"
	KeyProjectsRoot       = "projects_root"
	KeyTheme              = "theme"
	KeyGeminiAPIKey       = "gemini_api_key"
	KeyComplexityLevel    = "complexity_level"
	KeyLastUniverse       = "last_universe"
	KeyLastProject        = "last_project"
	KeyLastClient         = "last_client"
	KeyLastRole           = "last_role"
	KeyLastTargetOverride = "last_target_override"
	KeyAIProxyURL         = "ai_proxy_url"
	KeyDashboardPort      = "dashboard_port"
)

// Complexity levels for the capture form.
const (
	ComplexityZen = "Zen"
	ComplexityMed = "Med"
	ComplexityPro = "PRO"
)

// Config holds user preferences and vault path overrides.
type Config struct {
	// VaultRoot is the root of the vault. Empty means <base>/GemShot_Vault.
	VaultRoot string `yaml:"vault_root,omitempty" json:"vault_root,omitempty"`

	// UniversesRoot overrides the derived <vault_root>/0_TZOL/10_Areas.
	UniversesRoot string `yaml:"universes_root,omitempty" json:"universes_root,omitempty"`

	// ProjectsRoot overrides the derived <vault_root>/0_TZOL/20_Projects.
	ProjectsRoot string `yaml:"projects_root,omitempty" json:"projects_root,omitempty"`

	Theme           string `yaml:"theme,omitempty" json:"theme,omitempty"`
	GeminiAPIKey    string `yaml:"gemini_api_key,omitempty" json:"gemini_api_key,omitempty"`
	ComplexityLevel string `yaml:"complexity_level,omitempty" json:"complexity_level,omitempty"`

	// Last-used selections, pre-filled into the next capture.
	LastUniverse       string `yaml:"last_universe,omitempty" json:"last_universe,omitempty"`
	LastProject        string `yaml:"last_project,omitempty" json:"last_project,omitempty"`
	LastClient         string `yaml:"last_client,omitempty" json:"last_client,omitempty"`
	LastRole           string `yaml:"last_role,omitempty" json:"last_role,omitempty"`
	LastTargetOverride string `yaml:"last_target_override,omitempty" json:"last_target_override,omitempty"`

	// AIProxyURL routes AI calls through a local proxy. Empty means direct Gemini.
	AIProxyURL string `yaml:"ai_proxy_url,omitempty" json:"ai_proxy_url,omitempty"`

	// DashboardPort is the local port for the web dashboard.
	DashboardPort int `yaml:"dashboard_port,omitempty" json:"dashboard_port,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Theme:           ThemeLight,
		ComplexityLevel: ComplexityZen,
		DashboardPort:   8765,
	}
}

// Preferences are the selections remembered between capture sessions.
type Preferences struct {
	LastUniverse       string
	LastProject        string
	LastClient         string
	LastRole           string
	LastTargetOverride string
	ComplexityLevel    string
}

// Store reads and writes the config document under a base directory.
// It is constructed once at process start and passed to every consumer.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
// The baseDir parameter allows tests to use t.TempDir() instead of the app directory.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// BaseDir returns the directory holding the config document.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Path returns the absolute path of the config document.
func (s *Store) Path() string {
	return filepath.Join(s.baseDir, FileName)
}

// Load loads configuration from baseDir/config.yaml.
// Returns default config if the file doesn't exist.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Save merges updates into the existing document and writes it back.
// Keys not named in updates, including unknown ones, are preserved.
func (s *Store) Save(updates map[string]any) error {
	existing, err := s.loadRaw()
	if err != nil {
		return err
	}
	for k, v := range updates {
		existing[k] = v
	}

	data, err := yaml.Marshal(existing)
	if err != nil {
		return fmt.Errorf("encode %s: %w", FileName, err)
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", FileName, err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", FileName, err)
	}
	return nil
}

// Set writes a single key after validating known keys.
func (s *Store) Set(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key is required")
	}
	switch key {
	case KeyTheme:
		if _, ok := Themes[value]; !ok {
			return fmt.Errorf("unknown theme %q (expected LIGHT|DARK|CYBER)", value)
		}
	case KeyComplexityLevel:
		if !ValidComplexity(value) {
			return fmt.Errorf("unknown complexity level %q (expected Zen|Med|PRO)", value)
		}
	case KeyDashboardPort:
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid dashboard port %q", value)
		}
		return s.Save(map[string]any{key: port})
	}
	return s.Save(map[string]any{key: value})
}

// SetVaultRoot points the vault at a new root directory.
func (s *Store) SetVaultRoot(root string) error {
	return s.Save(map[string]any{KeyVaultRoot: root})
}

// SavePreferences persists the last-used capture selections.
func (s *Store) SavePreferences(p Preferences) error {
	return s.Save(map[string]any{
		KeyLastUniverse:       p.LastUniverse,
		KeyLastProject:        p.LastProject,
		KeyLastClient:         p.LastClient,
		KeyLastRole:           p.LastRole,
		KeyLastTargetOverride: p.LastTargetOverride,
		KeyComplexityLevel:    p.ComplexityLevel,
	})
}

// Paths loads the config and derives the vault paths from it.
func (s *Store) Paths() (VaultPaths, error) {
	cfg, err := s.Load()
	if err != nil {
		return VaultPaths{}, err
	}
	return cfg.Paths(s.baseDir), nil
}

// loadRaw loads the document as a generic map so unknown keys survive a save.
func (s *Store) loadRaw() (map[string]any, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence when non-zero.
func Merge(base, overlay *Config) *Config {
	result := *base
	pick := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	pick(&result.VaultRoot, overlay.VaultRoot)
	pick(&result.UniversesRoot, overlay.UniversesRoot)
	pick(&result.ProjectsRoot, overlay.ProjectsRoot)
	pick(&result.Theme, overlay.Theme)
	pick(&result.GeminiAPIKey, overlay.GeminiAPIKey)
	pick(&result.ComplexityLevel, overlay.ComplexityLevel)
	pick(&result.LastUniverse, overlay.LastUniverse)
	pick(&result.LastProject, overlay.LastProject)
	pick(&result.LastClient, overlay.LastClient)
	pick(&result.LastRole, overlay.LastRole)
	pick(&result.LastTargetOverride, overlay.LastTargetOverride)
	pick(&result.AIProxyURL, overlay.AIProxyURL)
	if overlay.DashboardPort != 0 {
		result.DashboardPort = overlay.DashboardPort
	}
	return &result
}

// ValidComplexity reports whether level is a known complexity level.
func ValidComplexity(level string) bool {
	switch level {
	case ComplexityZen, ComplexityMed, ComplexityPro:
		return true
	}
	return false
}
