package speedrun

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const MaxInitials = 3

// Sanitize upper-cases raw, drops anything outside A-Z and 0-9 and keeps at
// most MaxInitials characters.
func Sanitize(raw string) string {
	var b strings.Builder
	for _, r := range cases.Upper(language.Und).String(raw) {
		if b.Len() == MaxInitials {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
