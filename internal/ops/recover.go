package ops

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/gemshot/internal/config"
	"github.com/hpungsan/gemshot/internal/entry"
)

// candidate is a directory to scan. Root candidates are not scanned
// directly: each immediate subdirectory's attachments folder is.
type candidate struct {
	dir  string
	root bool
}

// imageCandidates lists where a moved capture may live, most specific first.
func imageCandidates(paths config.VaultPaths, universe, project string) []candidate {
	var cs []candidate
	if project != "" {
		p := filepath.Join(paths.Projects, project)
		cs = append(cs, candidate{dir: filepath.Join(p, config.AttachmentsDir)}, candidate{dir: p})
	}
	if universe != "" {
		u := filepath.Join(paths.Universes, universe)
		cs = append(cs, candidate{dir: filepath.Join(u, config.AttachmentsDir)}, candidate{dir: u})
	}
	return append(cs,
		candidate{dir: paths.OutputAttachments()},
		candidate{dir: paths.Projects, root: true},
		candidate{dir: paths.Universes, root: true},
	)
}

// RecoverImage finds the current location of a capture whose recorded path
// went stale. A path that still exists is returned unchanged. Matching uses
// the ten-digit timestamp in the stale file name, then the title when it is
// longer than five characters. The first matching directory wins.
// Recovery never writes and never fails: ok is false when nothing matched.
func RecoverImage(paths config.VaultPaths, stale, title, universe, project string) (string, bool) {
	if stale != "" {
		if abs, err := filepath.Abs(stale); err == nil && isFile(abs) {
			return abs, true
		}
	}

	m := matcher{
		timestamp: entry.TimestampKey(stale),
		title:     strings.ToLower(entry.TitleKey(title)),
		ext:       ".png",
	}
	if m.timestamp == "" && m.title == "" {
		return "", false
	}

	for _, c := range imageCandidates(paths, universe, project) {
		if !c.root {
			if found, ok := m.scan(c.dir); ok {
				return found, true
			}
			continue
		}
		subs, err := os.ReadDir(c.dir)
		if err != nil {
			continue
		}
		for _, sub := range subs {
			if !sub.IsDir() {
				continue
			}
			if found, ok := m.scan(filepath.Join(c.dir, sub.Name(), config.AttachmentsDir)); ok {
				return found, true
			}
		}
	}
	return "", false
}

// RecoverNote finds the current location of a note whose recorded path went
// stale. Only the project folder, then the universe folder, are searched,
// by sanitized title.
func RecoverNote(paths config.VaultPaths, stale, title, universe, project string) (string, bool) {
	if stale != "" {
		if abs, err := filepath.Abs(stale); err == nil && isFile(abs) {
			return abs, true
		}
	}

	m := matcher{title: strings.ToLower(entry.SanitizeTitle(title)), ext: ".md"}
	if m.title == "" {
		return "", false
	}

	var dirs []string
	if project != "" {
		dirs = append(dirs, filepath.Join(paths.Projects, project))
	}
	if universe != "" {
		dirs = append(dirs, filepath.Join(paths.Universes, universe))
	}
	for _, dir := range dirs {
		if found, ok := m.scan(dir); ok {
			return found, true
		}
	}
	return "", false
}

// ResolveEntry returns a copy of e with stale paths replaced by their
// recovered locations. Paths that cannot be recovered are left as recorded.
// The image is only looked up when one was recorded; the note is also looked
// up by title.
func ResolveEntry(paths config.VaultPaths, e entry.Entry) entry.Entry {
	if e.FilePath != "" {
		if p, ok := RecoverImage(paths, e.FilePath, e.Title, e.Universe, e.Project); ok {
			e.FilePath = p
		}
	}
	// An empty note path still resolves by title.
	if e.MDPath != "" || e.Title != "" {
		if p, ok := RecoverNote(paths, e.MDPath, e.Title, e.Universe, e.Project); ok {
			e.MDPath = p
		}
	}
	return e
}

// matcher holds the lowercase keys for one recovery attempt.
type matcher struct {
	timestamp string
	title     string
	ext       string
}

// scan looks at the regular files directly inside dir, in name order.
// A timestamp match anywhere in the directory beats a title match.
func (m matcher) scan(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}

	if m.timestamp != "" {
		for _, name := range files {
			if strings.Contains(name, m.timestamp) {
				return absJoin(dir, name), true
			}
		}
	}
	if m.title != "" {
		// Saved images replace spaces with underscores.
		underscored := strings.ReplaceAll(m.title, " ", "_")
		for _, name := range files {
			lower := strings.ToLower(name)
			if !strings.HasSuffix(lower, m.ext) {
				continue
			}
			if strings.Contains(lower, m.title) || strings.Contains(lower, underscored) {
				return absJoin(dir, name), true
			}
		}
	}
	return "", false
}

func absJoin(dir, name string) string {
	p := filepath.Join(dir, name)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
