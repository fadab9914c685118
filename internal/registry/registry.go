// Package registry keeps the flat JSON collections that index the vault:
// universes, projects, roles, clients, and capture entries.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hpungsan/gemshot/internal/entry"
)

// DataDir is the registry folder inside the base directory.
const DataDir = "data"

// Collection file names.
const (
	ClientsFile   = "clients.json"
	TasksFile     = "tasks.json"
	UniversesFile = "universes.json"
	ProjectsFile  = "projects.json"
	RolesFile     = "roles.json"
)

// Client is a registry client. Names are unique case-insensitively.
type Client struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Registry reads and writes the JSON collections under a data directory.
// Every operation loads and saves whole documents.
type Registry struct {
	dir string
}

// Open prepares the data directory and seeds missing collections.
func Open(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	r := &Registry{dir: dir}

	seeds := []struct {
		file string
		data any
	}{
		{ClientsFile, []Client{{ID: "internal", Name: "Internal"}}},
		{TasksFile, []entry.Entry{}},
		{UniversesFile, []string{"Jamagax Studio", "Personal", "Health"}},
		{ProjectsFile, []string{"LifeOS 2.0", "GemShot", "Web Redesign"}},
		{RolesFile, []string{"Diseñador", "Developer", "Manager", "Product Owner"}},
	}
	for _, s := range seeds {
		path := r.path(s.file)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := saveJSON(path, s.data); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Dir returns the data directory.
func (r *Registry) Dir() string {
	return r.dir
}

func (r *Registry) path(file string) string {
	return filepath.Join(r.dir, file)
}

// Universes returns the sorted universe names.
func (r *Registry) Universes() ([]string, error) {
	return r.names(UniversesFile)
}

// AddUniverse adds name if not already present (case-sensitive).
// Reports whether the collection changed.
func (r *Registry) AddUniverse(name string) (bool, error) {
	return r.addName(UniversesFile, name)
}

// Projects returns the sorted project names.
func (r *Registry) Projects() ([]string, error) {
	return r.names(ProjectsFile)
}

// AddProject adds name if not already present (case-sensitive).
func (r *Registry) AddProject(name string) (bool, error) {
	return r.addName(ProjectsFile, name)
}

// Roles returns the sorted role names.
func (r *Registry) Roles() ([]string, error) {
	return r.names(RolesFile)
}

// AddRole adds name if not already present (case-sensitive).
func (r *Registry) AddRole(name string) (bool, error) {
	return r.addName(RolesFile, name)
}

// Clients returns the clients in insertion order.
func (r *Registry) Clients() ([]Client, error) {
	var clients []Client
	if err := loadJSON(r.path(ClientsFile), &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// ClientNames returns the client names in insertion order.
func (r *Registry) ClientNames() ([]string, error) {
	clients, err := r.Clients()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(clients))
	for i, c := range clients {
		names[i] = c.Name
	}
	return names, nil
}

// AddClient adds a client unless one with the same name exists, ignoring case.
func (r *Registry) AddClient(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	clients, err := r.Clients()
	if err != nil {
		return false, err
	}
	for _, c := range clients {
		if strings.EqualFold(c.Name, name) {
			return false, nil
		}
	}
	clients = append(clients, Client{
		ID:        uuid.NewString()[:8],
		Name:      name,
		CreatedAt: time.Now().Format(time.RFC3339),
	})
	if err := saveJSON(r.path(ClientsFile), clients); err != nil {
		return false, err
	}
	return true, nil
}

// Entries returns the capture entries, newest first.
func (r *Registry) Entries() ([]entry.Entry, error) {
	var entries []entry.Entry
	if err := loadJSON(r.path(TasksFile), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddEntry prepends e to the entries collection.
func (r *Registry) AddEntry(e entry.Entry) error {
	entries, err := r.Entries()
	if err != nil {
		return err
	}
	entries = append([]entry.Entry{e}, entries...)
	return saveJSON(r.path(TasksFile), entries)
}

// FindEntry returns the entry with the given ID.
func (r *Registry) FindEntry(id string) (entry.Entry, bool, error) {
	entries, err := r.Entries()
	if err != nil {
		return entry.Entry{}, false, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, true, nil
		}
	}
	return entry.Entry{}, false, nil
}

func (r *Registry) names(file string) ([]string, error) {
	var names []string
	if err := loadJSON(r.path(file), &names); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (r *Registry) addName(file, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	names, err := r.names(file)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return false, nil
		}
	}
	names = append(names, name)
	sort.Strings(names)
	if err := saveJSON(r.path(file), names); err != nil {
		return false, err
	}
	return true, nil
}
