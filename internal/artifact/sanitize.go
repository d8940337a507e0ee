package artifact

import (
	"regexp"
	"strings"
)

// maxNameLength caps sanitized names to keep paths portable.
const maxNameLength = 100

var (
	// unsafeChars matches characters disallowed in file names on at
	// least one supported platform, plus control characters.
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*` + "\x00-\x1f" + `]+`)
	underscores = regexp.MustCompile(`_+`)
)

// SanitizeName derives a filesystem-safe name from a product name.
// Unsafe characters become underscores, runs are collapsed, and the
// result is trimmed and length-capped. Empty input falls back to a
// placeholder so the bundle folder is always nameable.
func SanitizeName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	s = underscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_ ")

	if runes := []rune(s); len(runes) > maxNameLength {
		s = strings.Trim(string(runes[:maxNameLength]), "_ ")
	}

	if s == "" {
		return "Unknown_Product"
	}
	return s
}
