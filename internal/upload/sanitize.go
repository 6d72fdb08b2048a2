package upload

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeFilename reduces a client-supplied filename to a safe, portable
// basename.
//
// The name is NFKD-normalized and stripped of non-ASCII characters, path
// separators become spaces, runs of whitespace become a single underscore,
// anything outside [A-Za-z0-9_.-] is dropped and leading or trailing dots
// and underscores are trimmed. The result may be empty.
//
// Examples:
//
//	"My cool movie.mov"          -> "My_cool_movie.mov"
//	"../../../etc/passwd"        -> "etc_passwd"
//	"i contain cool ümläuts.txt" -> "i_contain_cool_umlauts.txt"
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)

	var ascii strings.Builder
	for _, r := range name {
		if r <= unicode.MaxASCII {
			ascii.WriteRune(r)
		}
	}
	name = ascii.String()

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var kept strings.Builder
	for _, r := range name {
		if isSafeFilenameRune(r) {
			kept.WriteRune(r)
		}
	}

	return strings.Trim(kept.String(), "._")
}

func isSafeFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '-':
		return true
	}
	return false
}
