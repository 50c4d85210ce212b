package posts

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeTitle returns the uppercase lookup key for a title.
func NormalizeTitle(title string) string {
	return strings.ToUpper(strings.TrimSpace(title))
}

// DisplayTitle renders a stored title in title case.
func DisplayTitle(title string) string {
	// Casers keep state, so one is built per call.
	return cases.Title(language.Und).String(title)
}
