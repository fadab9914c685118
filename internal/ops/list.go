package ops

import (
	"fmt"
	"strings"

	"github.com/hpungsan/gemshot/internal/entry"
	"github.com/hpungsan/gemshot/internal/errors"
)

// CategoryAll disables the type filter.
const CategoryAll = "ALL"

// ListInput contains parameters for the List operation.
type ListInput struct {
	Query    string // case-insensitive match on title, tags, and notes
	Category string // ALL or an entry type; default ALL
	Limit    int    // default: 20, max: 200
	Offset   int    // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []entry.Entry `json:"items"`
	Pagination Pagination    `json:"pagination"`
	Sort       string        `json:"sort"`
}

// List filters registry entries, newest first, and resolves the stale
// paths of the returned page.
func List(env Env, input ListInput) (*ListOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	_, paths, err := env.paths()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	all, err := env.Registry.Entries()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	query := strings.ToLower(strings.TrimSpace(input.Query))
	matched := make([]entry.Entry, 0, len(all))
	for _, e := range all {
		if category != "" && e.Type != category {
			continue
		}
		if query != "" && !matchesQuery(e, query) {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	start := min(offset, total)
	end := min(start+limit, total)
	items := make([]entry.Entry, 0, end-start)
	for _, e := range matched[start:end] {
		items = append(items, ResolveEntry(paths, e))
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
			Total:   total,
		},
		Sort: "timestamp_desc",
	}, nil
}

// Get returns one entry with its paths resolved.
func Get(env Env, id string) (*entry.Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	_, paths, err := env.paths()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	e, ok, err := env.Registry.FindEntry(id)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return nil, errors.NewNotFound(id)
	}
	resolved := ResolveEntry(paths, e)
	return &resolved, nil
}

// OpenOutput contains the result of the Open operation.
type OpenOutput struct {
	Path string `json:"path"`
	Kind string `json:"kind"` // note or image
}

// Open hands an entry's note to opener, or its image when the note cannot
// be found.
func Open(env Env, id string, opener func(path string) error) (*OpenOutput, error) {
	e, err := Get(env, id)
	if err != nil {
		return nil, err
	}

	out := &OpenOutput{}
	switch {
	case e.MDPath != "" && isFile(e.MDPath):
		out.Path, out.Kind = e.MDPath, "note"
	case e.FilePath != "" && isFile(e.FilePath):
		out.Path, out.Kind = e.FilePath, "image"
	default:
		return nil, errors.NewFileNotFound(e.Title)
	}

	if opener != nil {
		if err := opener(out.Path); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("open %s: %w", out.Path, err))
		}
	}
	env.recorder().Logger().Info("opened entry", "id", e.ID, "path", out.Path)
	return out, nil
}

func parseCategory(c string) (entry.Type, error) {
	c = strings.TrimSpace(c)
	if c == "" || strings.EqualFold(c, CategoryAll) {
		return "", nil
	}
	for _, t := range entry.AllTypes {
		if strings.EqualFold(string(t), c) {
			return t, nil
		}
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown category %q", c))
}

func matchesQuery(e entry.Entry, query string) bool {
	return strings.Contains(strings.ToLower(e.Title), query) ||
		strings.Contains(strings.ToLower(e.Tags), query) ||
		strings.Contains(strings.ToLower(e.Notes), query)
}
