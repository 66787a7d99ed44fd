package validator

import (
	"strings"
	"unicode"
)

const (
	DefaultFileName = "qr_code"
	maxFileNameLen  = 128
)

// FileName strips path separators and control characters from name and
// returns DefaultFileName when nothing usable is left.
func FileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == ':':
			return -1
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			return -1
		}
		return r
	}, name)

	name = strings.Trim(name, " .")
	if r := []rune(name); len(r) > maxFileNameLen {
		name = strings.TrimRight(string(r[:maxFileNameLen]), " .")
	}
	if name == "" {
		return DefaultFileName
	}
	return name
}
