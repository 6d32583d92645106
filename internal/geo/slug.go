package geo

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	disallowed = regexp.MustCompile(`[^\w.\s-]`)
	collapse   = regexp.MustCompile(`[-\s]+`)
)

// slug converts an artifact name to a clean cache filename: ASCII via NFKD
// decomposition, lowercase, with runs of whitespace and dashes collapsed to a
// single dash and everything else but word characters, dots and dashes
// removed.
func slug(name string) string {
	decomposed := norm.NFKD.String(name)
	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, decomposed)

	cleaned := disallowed.ReplaceAllString(ascii, "")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))
	return collapse.ReplaceAllString(cleaned, "-")
}
