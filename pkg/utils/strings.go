package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CategoryLabel normalizes a free-text category for display and bucketing:
// trimmed, title-cased, never empty.
func CategoryLabel(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "Other"
	}
	return cases.Title(language.English).String(strings.ToLower(trimmed))
}
