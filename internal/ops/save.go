package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/config"
	"github.com/hpungsan/gemshot/internal/entry"
	"github.com/hpungsan/gemshot/internal/errors"
)

// Save step names.
const (
	StepImage       = "image"
	StepNote        = "note"
	StepRegistry    = "registry"
	StepPreferences = "preferences"
)

// SaveInput contains parameters for the Save operation.
type SaveInput struct {
	Title       string
	Universe    string
	Project     string
	Client      string
	Role        string
	Tags        string // comma-separated; empty becomes "Untitled"
	Notes       string
	AIAnalysis  string
	Type        string // default: Screen
	Deadline    string
	RelatedFile string
	Software    string
	Source      string

	TargetOverride string // absolute folder; wins over routing
	KeepImage      bool
	ImagePath      string // temp capture, required when KeepImage

	ComplexityLevel string // default: the configured level
}

// StepResult reports the outcome of one save step.
type StepResult struct {
	Step  string `json:"step"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	Entry       entry.Entry  `json:"entry"`
	Target      string       `json:"target"`
	Reason      RouteReason  `json:"reason"`
	ImageCopied bool         `json:"image_copied,omitempty"`
	Steps       []StepResult `json:"steps"`
}

// Complete reports whether every step succeeded.
func (o *SaveOutput) Complete() bool {
	for _, s := range o.Steps {
		if !s.OK {
			return false
		}
	}
	return true
}

// Save files a capture: it routes it, moves the image into the target's
// attachments folder, writes the Markdown note, records the entry, and
// remembers the selections for next time. Steps run in order and are not
// rolled back; a failed step is reported in Steps and the rest still run.
// Only invalid input or an unreadable config returns an error.
func Save(ctx context.Context, env Env, input SaveInput) (*SaveOutput, error) {
	input = trimSaveInput(input)

	typ, ok := entry.ParseType(input.Type)
	if !ok {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown type %q", input.Type))
	}
	if input.ComplexityLevel != "" && !config.ValidComplexity(input.ComplexityLevel) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown complexity level %q", input.ComplexityLevel))
	}
	if err := ValidateFolderName("universe", input.Universe); err != nil {
		return nil, err
	}
	if err := ValidateFolderName("project", input.Project); err != nil {
		return nil, err
	}
	if input.KeepImage {
		if err := ValidatePath(input.ImagePath, PathCheckImage); err != nil {
			return nil, err
		}
	}
	if input.TargetOverride != "" {
		if err := ValidatePath(input.TargetOverride, PathCheckTarget); err != nil {
			return nil, err
		}
	}
	if input.Tags == "" {
		input.Tags = entry.UntitledStem
	}

	cfg, paths, err := env.paths()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	rec := env.recorder()
	now := env.now()

	registerSelections(ctx, env, rec, paths, input)

	route := Route(paths, RouteInput{
		Universe:       input.Universe,
		Project:        input.Project,
		TargetOverride: input.TargetOverride,
	})
	out := &SaveOutput{Target: route.Target, Reason: route.Reason}
	step := func(name string, err error) bool {
		r := StepResult{Step: name, OK: err == nil}
		if err != nil {
			r.Error = err.Error()
			rec.Error("save step failed", err, "step", name, "target", route.Target)
		}
		out.Steps = append(out.Steps, r)
		return err == nil
	}

	// a. image
	var imageName, imagePath string
	if input.KeepImage {
		name := fmt.Sprintf("%s_%d.png", entry.ImageStem(input.Title), now.Unix())
		dest := filepath.Join(route.Target, config.AttachmentsDir, name)
		copied, err := moveFile(input.ImagePath, dest)
		out.ImageCopied = copied
		if step(StepImage, err) {
			imageName, imagePath = name, absJoin(filepath.Dir(dest), name)
		}
	}

	// b. note
	note := entry.Note{
		Created:     now,
		Title:       input.Title,
		Type:        typ,
		Universe:    input.Universe,
		Project:     input.Project,
		Tags:        input.Tags,
		Source:      input.Source,
		Software:    input.Software,
		Deadline:    input.Deadline,
		RelatedFile: input.RelatedFile,
		ImageName:   imageName,
		Notes:       input.Notes,
		AIAnalysis:  input.AIAnalysis,
	}
	notePath := filepath.Join(route.Target, entry.NoteStem(input.Title)+".md")
	err = os.MkdirAll(route.Target, 0o755)
	if err == nil {
		err = writeFileNoFollow(notePath, []byte(note.Render()))
	}
	if step(StepNote, err) {
		notePath = absJoin(filepath.Dir(notePath), filepath.Base(notePath))
	} else {
		notePath = ""
	}

	// c. registry
	id, err := entry.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	out.Entry = entry.Entry{
		ID:         id,
		Timestamp:  now.Format(time.RFC3339),
		Status:     entry.StatusFor(typ),
		Title:      input.Title,
		Type:       typ,
		Universe:   input.Universe,
		Project:    input.Project,
		Client:     input.Client,
		Role:       input.Role,
		Tags:       input.Tags,
		Notes:      input.Notes,
		AIAnalysis: input.AIAnalysis,
		FilePath:   imagePath,
		MDPath:     notePath,
	}
	step(StepRegistry, env.Registry.AddEntry(out.Entry))

	// d. preferences
	level := input.ComplexityLevel
	if level == "" {
		level = cfg.ComplexityLevel
	}
	step(StepPreferences, env.Config.SavePreferences(config.Preferences{
		LastUniverse:       input.Universe,
		LastProject:        input.Project,
		LastClient:         input.Client,
		LastRole:           input.Role,
		LastTargetOverride: input.TargetOverride,
		ComplexityLevel:    level,
	}))

	// e. activity
	rec.Event(ctx, activity.KindSave, "Saved to "+route.Target,
		"id", id, "reason", string(route.Reason), "md_path", notePath, "file_path", imagePath)

	return out, nil
}

// registerSelections adds the chosen universe, project, role, and client to
// the registry, creating universe and project folders when their root
// exists. Failures are logged and never stop a save.
func registerSelections(ctx context.Context, env Env, rec *activity.Recorder, paths config.VaultPaths, input SaveInput) {
	if input.Universe != "" {
		if _, err := env.Registry.AddUniverse(input.Universe); err != nil {
			rec.Error("failed to register universe", err, "universe", input.Universe)
		}
		ensureFolder(ctx, rec, paths.Universes, input.Universe)
	}
	if input.Project != "" {
		if _, err := env.Registry.AddProject(input.Project); err != nil {
			rec.Error("failed to register project", err, "project", input.Project)
		}
		ensureFolder(ctx, rec, paths.Projects, input.Project)
	}
	if input.Role != "" {
		if _, err := env.Registry.AddRole(input.Role); err != nil {
			rec.Error("failed to register role", err, "role", input.Role)
		}
	}
	if input.Client != "" {
		if _, err := env.Registry.AddClient(input.Client); err != nil {
			rec.Error("failed to register client", err, "client", input.Client)
		}
	}
}

// ensureFolder creates root/name when root exists and the folder does not.
func ensureFolder(ctx context.Context, rec *activity.Recorder, root, name string) {
	if !isDir(root) {
		return
	}
	dir := filepath.Join(root, name)
	if isDir(dir) {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		rec.Error("failed to create folder", err, "path", dir)
		return
	}
	rec.Event(ctx, activity.KindSystem, "Auto-created folder: "+dir)
}

func trimSaveInput(in SaveInput) SaveInput {
	for _, s := range []*string{
		&in.Title, &in.Universe, &in.Project, &in.Client, &in.Role, &in.Tags,
		&in.Type, &in.Deadline, &in.RelatedFile, &in.Software, &in.Source,
		&in.TargetOverride, &in.ImagePath, &in.ComplexityLevel,
	} {
		*s = strings.TrimSpace(*s)
	}
	return in
}
