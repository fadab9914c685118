package entry

import (
	"fmt"
	"strings"
	"time"
)

// NoteTimeFormat is the layout of the "created" front-matter field.
const NoteTimeFormat = "2006-01-02 15:04:05"

// Note is the content of a Markdown note filed into the vault.
type Note struct {
	Created     time.Time
	Title       string
	Type        Type
	Universe    string
	Project     string
	Tags        string
	Source      string
	Software    string
	Deadline    string
	RelatedFile string
	ImageName   string // base name inside attachments/, empty when no image was kept
	Notes       string
	AIAnalysis  string
}

// Render formats the note: front matter in fixed field order, the title,
// an optional image reference, then the notes and AI analysis sections.
func (n Note) Render() string {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "created: %s\n", n.Created.Format(NoteTimeFormat))
	fmt.Fprintf(&b, "type: %s\n", n.Type)
	fmt.Fprintf(&b, "universe: %s\n", n.Universe)
	fmt.Fprintf(&b, "project: %s\n", n.Project)
	fmt.Fprintf(&b, "tags: [%s]\n", n.Tags)
	fmt.Fprintf(&b, "source: %s\n", oneLine(n.Source))
	fmt.Fprintf(&b, "software: %s\n", oneLine(n.Software))
	fmt.Fprintf(&b, "deadline: %s\n", n.Deadline)
	fmt.Fprintf(&b, "related_file: %s\n", n.RelatedFile)
	b.WriteString("---\n")

	fmt.Fprintf(&b, "# %s\n", n.Title)
	if n.ImageName != "" {
		fmt.Fprintf(&b, "![Screenshot](%s/%s)\n", "attachments", n.ImageName)
	}

	b.WriteString("\n## My Notes\n")
	b.WriteString(strings.TrimRight(n.Notes, "\n"))
	b.WriteString("\n\n## AI Analysis\n")
	b.WriteString(strings.TrimRight(n.AIAnalysis, "\n"))
	b.WriteString("\n")

	return b.String()
}

// oneLine keeps front matter values on a single line.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
