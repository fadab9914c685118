package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpungsan/gemshot/internal/entry"
	"github.com/hpungsan/gemshot/internal/errors"
)

// FormatAnalysis wraps a model reply in the block prepended to a note's AI
// transcript.
func FormatAnalysis(text, instructions string) string {
	header := "--- AI Analysis (Auto) ---\n"
	if instructions != "" {
		header = fmt.Sprintf("--- AI Output (Custom Instruction) ---\nNOTE: %s\n", instructions)
	}
	return header + text + "\n\n" + strings.Repeat("-", 40) + "\n\n"
}

// Form holds the capture fields auto-fill may set.
type Form struct {
	Title       string `json:"title"`
	Tags        string `json:"tags"`
	AIAnalysis  string `json:"ai_analysis"`
	Deadline    string `json:"deadline"`
	Type        string `json:"type"`
	RelatedFile string `json:"related_file"`
	Software    string `json:"software"`
}

// ParseAutofill strips Markdown code fences from a smart-fill reply and
// decodes the JSON object inside.
func ParseAutofill(raw string) (map[string]json.RawMessage, error) {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &fields); err != nil {
		return nil, errors.NewAIFailed(fmt.Errorf("could not parse AI response: %w", err))
	}
	if fields == nil {
		return nil, errors.NewAIFailed(fmt.Errorf("could not parse AI response: not a JSON object"))
	}
	return fields, nil
}

// ApplyAutofill copies the fields of a smart-fill reply onto form, in order:
// title, tags, summary, deadline, type, file_path. Empty and null fields are
// skipped. On a malformed field it stops and returns an error; the fields
// applied before it are kept.
func ApplyAutofill(form *Form, raw string) error {
	fields, err := ParseAutofill(raw)
	if err != nil {
		return err
	}

	software, err := stringField(fields, "software")
	if err != nil {
		return err
	}

	title, err := stringField(fields, "title")
	if err != nil {
		return err
	}
	if title != "" {
		form.Title = title
	}

	tags, err := stringField(fields, "tags")
	if err != nil {
		return err
	}
	if tags != "" {
		if software != "" {
			form.Software = software
			tags = software + ", " + tags
		}
		form.Tags = tags
	}

	summary, err := stringField(fields, "summary")
	if err != nil {
		return err
	}
	if summary != "" {
		form.AIAnalysis = summary
	}

	deadline, err := stringField(fields, "deadline")
	if err != nil {
		return err
	}
	if deadline != "" {
		form.Deadline = deadline
	}

	typ, err := stringField(fields, "type")
	if err != nil {
		return err
	}
	if typ != "" {
		t, ok := matchType(typ)
		if !ok {
			return errors.NewAIFailed(fmt.Errorf("could not parse AI response: unknown type %q", typ))
		}
		form.Type = string(t)
	}

	filePath, err := stringField(fields, "file_path")
	if err != nil {
		return err
	}
	if filePath != "" {
		form.RelatedFile = strings.ReplaceAll(filePath, "\\", "/")
	}
	return nil
}

// stringField decodes fields[name] as a string. Missing and null are "".
func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// Models sometimes answer tags as a list.
		var list []string
		if name == "tags" && json.Unmarshal(raw, &list) == nil {
			return strings.Join(list, ", "), nil
		}
		return "", errors.NewAIFailed(fmt.Errorf("could not parse AI response: field %q is not a string", name))
	}
	return strings.TrimSpace(s), nil
}

func matchType(s string) (entry.Type, bool) {
	for _, t := range entry.AllTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}
