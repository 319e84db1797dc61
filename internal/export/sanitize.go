package export

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxFilenameLength is the most characters a sanitized name keeps
const MaxFilenameLength = 64

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\x7f]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes a name safe for files and folders on any filesystem:
// whitespace runs and unsafe characters become underscores, the ends are trimmed
// and the result is bounded to MaxFilenameLength. Empty results are "untitled".
func SanitizeFilename(name string) string {
	s := whitespace.ReplaceAllString(name, "_")
	s = unsafeChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_. ")

	if utf8.RuneCountInString(s) > MaxFilenameLength {
		s = string([]rune(s)[:MaxFilenameLength])
		s = strings.TrimRight(s, "_. ")
	}

	if s == "" {
		return "untitled"
	}
	return s
}

// uniqueNames hands out sanitized names, suffixing repeats with _2, _3...
// Names compare case-insensitively.
type uniqueNames map[string]bool

func (u uniqueNames) next(name string) string {
	base := SanitizeFilename(name)
	candidate := base
	for n := 2; u[strings.ToLower(candidate)]; n++ {
		candidate = base + "_" + strconv.Itoa(n)
	}
	u[strings.ToLower(candidate)] = true
	return candidate
}
