package entry

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTitleKeyLen is the length a sanitized title must exceed before it is
// trusted as a recovery key on its own.
const MinTitleKeyLen = 5

// UntitledStem names files for captures without a usable title.
const UntitledStem = "Untitled"

// timestampRegex matches a run of exactly ten digits.
var timestampRegex = regexp.MustCompile(`(?:^|\D)(\d{10})(?:\D|$)`)

// SanitizeTitle keeps letters, digits, spaces, hyphens, and underscores,
// then trims surrounding whitespace.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// NoteStem returns the note file stem for a title ("Login Bug" → "Login Bug").
func NoteStem(title string) string {
	if s := SanitizeTitle(title); s != "" {
		return s
	}
	return UntitledStem
}

// ImageStem returns the image file stem for a title ("Login Bug" → "Login_Bug").
func ImageStem(title string) string {
	return strings.ReplaceAll(NoteStem(title), " ", "_")
}

// TimestampKey extracts the ten-digit capture token from a file name.
// Only the base name is inspected.
func TimestampKey(path string) string {
	if path == "" {
		return ""
	}
	m := timestampRegex.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return ""
	}
	return m[1]
}

// TitleKey returns the sanitized title when it is long enough to be a
// reliable recovery key, or "" otherwise.
func TitleKey(title string) string {
	s := SanitizeTitle(title)
	if utf8.RuneCountInString(s) <= MinTitleKeyLen {
		return ""
	}
	return s
}
