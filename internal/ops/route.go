package ops

import (
	"path/filepath"
	"strings"

	"github.com/hpungsan/gemshot/internal/config"
)

// RouteReason records which rule picked a save target.
type RouteReason string

const (
	RouteOverride RouteReason = "override"
	RouteProject  RouteReason = "project"
	RouteUniverse RouteReason = "universe"
	RouteFallback RouteReason = "fallback"
)

// RouteInput contains the fields routing looks at.
type RouteInput struct {
	Universe       string
	Project        string
	TargetOverride string
}

// RouteOutput contains the result of the Route operation.
type RouteOutput struct {
	Target string      `json:"target"`
	Reason RouteReason `json:"reason"`
}

// Route picks the folder a capture is filed into. First match wins:
// a manual override, an existing project folder, an existing universe
// folder, then the default output folder.
func Route(paths config.VaultPaths, input RouteInput) RouteOutput {
	if o := strings.TrimSpace(input.TargetOverride); o != "" {
		return RouteOutput{Target: o, Reason: RouteOverride}
	}
	if input.Project != "" {
		if dir := filepath.Join(paths.Projects, input.Project); isDir(dir) {
			return RouteOutput{Target: dir, Reason: RouteProject}
		}
	}
	if input.Universe != "" {
		if dir := filepath.Join(paths.Universes, input.Universe); isDir(dir) {
			return RouteOutput{Target: dir, Reason: RouteUniverse}
		}
	}
	return RouteOutput{Target: paths.Output, Reason: RouteFallback}
}
