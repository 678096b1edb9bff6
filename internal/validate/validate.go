// Package validate checks identifiers taken from URLs before they are
// interpolated into upstream paths.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxSearch = 100

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	// product, store and application ids are integers or uuids upstream
	reID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// ID validates a resource identifier from a route parameter.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Search trims a list search term and caps its length.
func Search(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxSearch {
		s = string([]rune(s)[:maxSearch])
	}
	return s
}
