package entry

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Type classifies a capture.
type Type string

const (
	TypeNota    Type = "Nota"
	TypeScreen  Type = "Screen"
	TypeMinuta  Type = "Minuta"
	TypeArchivo Type = "Archivo"
	TypeTask    Type = "Task"
	TypeHito    Type = "Hito"
)

// AllTypes lists the entry types in display order.
var AllTypes = []Type{TypeNota, TypeScreen, TypeMinuta, TypeArchivo, TypeTask, TypeHito}

// Entry statuses.
const (
	StatusTodo = "todo"
	StatusInfo = "info"
)

// Entry is a registry record for a filed capture.
// FilePath and MDPath are absolute at save time and may go stale once the
// vault is reorganized outside the app.
type Entry struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	Status     string `json:"status"`
	Title      string `json:"title"`
	Type       Type   `json:"type"`
	Universe   string `json:"universe"`
	Project    string `json:"project"`
	Client     string `json:"client"`
	Role       string `json:"role"`
	Tags       string `json:"tags"`
	Notes      string `json:"notes"`
	AIAnalysis string `json:"ai_analysis"`
	FilePath   string `json:"file_path"`
	MDPath     string `json:"md_path"`
}

// ParseType validates s as an entry type. Empty defaults to Screen.
func ParseType(s string) (Type, bool) {
	if s == "" {
		return TypeScreen, true
	}
	for _, t := range AllTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// StatusFor returns the initial status for an entry of type t.
func StatusFor(t Type) string {
	if t == TypeTask {
		return StatusTodo
	}
	return StatusInfo
}

// NewID generates a new ULID.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
